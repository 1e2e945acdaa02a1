package manifest

import (
	"github.com/arthur-debert/packwrap/pkg/errors"
	"github.com/pelletier/go-toml/v2"
)

// PackageInfo is the small slice of the crate manifest packwrap cares
// about outside the byte-exact patch path: the package name (used to
// derive the artifact name) and the declared crate types (used for
// diagnostics).
type PackageInfo struct {
	Name       string
	CrateTypes []string
}

// cargoManifest mirrors just the manifest tables Inspect reads.
type cargoManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Lib struct {
		CrateType []string `toml:"crate-type"`
	} `toml:"lib"`
}

// Inspect parses the manifest as TOML. This never feeds the patch,
// which operates on opaque bytes; it only informs naming and reporting.
func Inspect(data []byte) (*PackageInfo, error) {
	var m cargoManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestRead,
			"manifest is not valid TOML")
	}

	return &PackageInfo{
		Name:       m.Package.Name,
		CrateTypes: m.Lib.CrateType,
	}, nil
}
