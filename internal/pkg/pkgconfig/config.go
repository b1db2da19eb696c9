package pkgconfig

// Config is the read-only view of the application configuration.
type Config interface {
	IsSet(key string) bool
	GetInt(key string) int64
	GetInts(key string) []int
	GetBool(key string) bool
	GetFloat(key string) float64
	GetString(key string) string
	GetBinary(key string) []byte
	GetArray(key string) []string
	GetMap(key string) map[string]string
	Close() error
}
