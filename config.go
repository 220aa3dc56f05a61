package ringfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"gopkg.in/yaml.v2"
)

// Config is the content of a YAML options file:
//
//	use_mmap: true
//	sync_writes: false
//	buffer_pool_size: 64K
//	default_size: 10M
//	file_mode: "0600"
//
// Every key is optional; unset keys leave the corresponding option alone.
type Config struct {
	UseMmap        *bool
	SyncWrites     *bool
	BufferPoolSize *int
	DefaultSize    uint64      // size of rings created without an explicit size, 0 if unset
	FileMode       os.FileMode // 0 if unset
}

// LoadConfig reads and parses the YAML file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses a YAML options document. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	var aux struct {
		UseMmap        *bool  `yaml:"use_mmap"`
		SyncWrites     *bool  `yaml:"sync_writes"`
		BufferPoolSize string `yaml:"buffer_pool_size"`
		DefaultSize    string `yaml:"default_size"`
		FileMode       string `yaml:"file_mode"`
	}
	if err := yaml.UnmarshalStrict(data, &aux); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	c := Config{UseMmap: aux.UseMmap, SyncWrites: aux.SyncWrites}
	if aux.BufferPoolSize != "" {
		n, err := parseSizeOrZero(aux.BufferPoolSize)
		if err != nil {
			return Config{}, fmt.Errorf("buffer_pool_size: %w", err)
		}
		size := int(n)
		c.BufferPoolSize = &size
	}
	if aux.DefaultSize != "" {
		n, err := ParseSize(aux.DefaultSize)
		if err != nil {
			return Config{}, fmt.Errorf("default_size: %w", err)
		}
		c.DefaultSize = n
	}
	if aux.FileMode != "" {
		m, err := strconv.ParseUint(aux.FileMode, 8, 32)
		if err != nil || m == 0 || m > 0o777 {
			return Config{}, fmt.Errorf("file_mode: invalid permission %q", aux.FileMode)
		}
		c.FileMode = os.FileMode(m)
	}
	return c, nil
}

// Apply returns opts with every option set in c overridden.
func (c Config) Apply(opts Options) Options {
	if c.UseMmap != nil {
		opts.UseMmap = *c.UseMmap
	}
	if c.SyncWrites != nil {
		opts.SyncWrites = *c.SyncWrites
	}
	if c.BufferPoolSize != nil {
		opts.BufferPoolSize = *c.BufferPoolSize
	}
	if c.FileMode != 0 {
		opts.FileMode = c.FileMode
	}
	return opts
}

// ParseSize parses a byte count such as "4096", "64K", "400m" or "1GB".
// Units are powers of 1024 and case-insensitive. Zero is rejected.
func ParseSize(s string) (uint64, error) {
	n, err := parseSizeOrZero(s)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return n, nil
}

func parseSizeOrZero(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n, nil
	}
	n, err := bytefmt.ToBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return n, nil
}
