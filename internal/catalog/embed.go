package catalog

import _ "embed"

// defaultCatalog is the factory fleet shipped with the binary.
//
//go:embed data/aircraft.json
var defaultCatalog []byte
