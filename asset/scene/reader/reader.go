package reader

import (
	"fmt"

	"github.com/achilleasa/bvhc/asset"
	"github.com/achilleasa/bvhc/asset/compiler/input"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*input.Scene, error)
}

// Read scene from a local file or http/https URL.
func ReadScene(filename string) (*input.Scene, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return ReadSceneFromResource(res)
}

// Read scene from an open resource selecting a reader based on the resource
// file extension.
func ReadSceneFromResource(res *asset.Resource) (*input.Scene, error) {
	var reader Reader
	switch res.Ext() {
	case ".yaml", ".yml":
		reader = newYamlReader()
	default:
		return nil, fmt.Errorf("readScene: unsupported file format %q", res.Ext())
	}
	return reader.Read(res)
}
