// Package pkgconfig reads application settings.
//
// Code depends on the Config interface; NewViper backs it with a YAML file
// whose keys can be overridden by GOFRAUD_* environment variables (dots become
// underscores, so ingest.storage.driver is GOFRAUD_INGEST_STORAGE_DRIVER).
package pkgconfig
