package toml

import (
	"github.com/pelletier/go-toml"
)

// Marshal returns the TOML encoding of v.
func Marshal(v interface{}) ([]byte, error) {
	return toml.Marshal(v)
}

// Unmarshal parses the TOML-encoded data and stores the result in the value.
func Unmarshal(data []byte, v interface{}) error {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return err
	}
	return tree.Unmarshal(v)
}
