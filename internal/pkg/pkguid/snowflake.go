package pkguid

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

// SnowflakeEpoch is the custom epoch (ms) used by every Snowflake generator,
// Wed Oct 01 2025 00:00:00.000 UTC.
const SnowflakeEpoch int64 = 1759276800000

// Snowflake generates time-ordered numeric IDs using the Snowflake algorithm.
type Snowflake struct {
	node *snowflake.Node
}

func generateRandomNodeID() (int64, error) {
	var nodeID int64
	err := binary.Read(rand.Reader, binary.BigEndian, &nodeID)
	if err != nil {
		return 0, err
	}

	return nodeID & (1<<10 - 1), nil // Limiting to 10 bits for node ID
}

// NewSnowflake constructs a Snowflake generator with a random node ID.
func NewSnowflake() (*Snowflake, error) {
	nodeID, err := generateRandomNodeID()
	if err != nil {
		return nil, err
	}

	return NewSnowflakeNode(nodeID)
}

// NewSnowflakeNode constructs a Snowflake generator for a fixed node ID (0..1023).
func NewSnowflakeNode(nodeID int64) (*Snowflake, error) {
	snowflake.Epoch = SnowflakeEpoch

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new unique numeric ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}

// Strings adapts the generator to StringID by formatting IDs in base 10.
func (s *Snowflake) Strings() StringID {
	return snowflakeString{s: s}
}

type snowflakeString struct {
	s *Snowflake
}

func (f snowflakeString) Generate() string {
	return strconv.FormatInt(f.s.Generate(), 10)
}
