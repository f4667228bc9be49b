package nvme

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/nisheethbhat/nvmeqemu/regs"
)

// DefaultImageSize is the backing file size used when a config doesn't
// specify one, per spec.md §6: "a single fixed-size image ... default 1 GiB".
const DefaultImageSize = 1 << 30

// BlockSize is the fixed logical block size spec.md §6 names.
const BlockSize = 512

// Config is the optional declarative preload file spec.md §1/§6 allows: the
// backing image location/size and any register reset/mask overrides. This
// is the one piece of the out-of-scope config file format spec.md asks to be
// specified, scoped to exactly its effect on the register table.
type Config struct {
	ImagePath string       `yaml:"image_path"`
	ImageSize int64        `yaml:"image_size"`
	Registers []regs.Entry `yaml:"registers"`
}

// LoadConfig reads and parses a YAML config file at path. A zero ImageSize
// in the file is replaced with DefaultImageSize.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "nvme: reading config %s", path)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "nvme: parsing config %s", path)
	}

	if cfg.ImageSize == 0 {
		cfg.ImageSize = DefaultImageSize
	}

	return cfg, nil
}

// RegisterTable returns the effective register table: spec.md §6's defaults
// overlaid with this config's overrides.
func (c Config) RegisterTable() []regs.Entry {
	return regs.Merge(regs.Default(), c.Registers)
}
