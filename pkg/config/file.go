package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/charlie0129/cellentry/pkg/cell"
	"github.com/charlie0129/cellentry/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		DefaultCellCount: ptr.To(8),
		// Off by default: re-registration replaces every cell, including
		// currents that were already entered.
		CarryOverCurrents:         ptr.To(false),
		MinTemperature:            ptr.To(cell.DefaultMinTemperature),
		MaxTemperature:            ptr.To(cell.DefaultMaxTemperature),
		AllowNonRootAccess:        ptr.To(false),
		SessionIdleTimeoutMinutes: ptr.To(60),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	DefaultCellCount          *int     `json:"defaultCellCount,omitempty" yaml:"defaultCellCount,omitempty"`
	CarryOverCurrents         *bool    `json:"carryOverCurrents,omitempty" yaml:"carryOverCurrents,omitempty"`
	MinTemperature            *float64 `json:"minTemperature,omitempty" yaml:"minTemperature,omitempty"`
	MaxTemperature            *float64 `json:"maxTemperature,omitempty" yaml:"maxTemperature,omitempty"`
	AllowNonRootAccess        *bool    `json:"allowNonRootAccess,omitempty" yaml:"allowNonRootAccess,omitempty"`
	SessionIdleTimeoutMinutes *int     `json:"sessionIdleTimeoutMinutes,omitempty" yaml:"sessionIdleTimeoutMinutes,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		DefaultCellCount:          ptr.To(c.DefaultCellCount()),
		CarryOverCurrents:         ptr.To(c.CarryOverCurrents()),
		MinTemperature:            ptr.To(c.MinTemperature()),
		MaxTemperature:            ptr.To(c.MaxTemperature()),
		AllowNonRootAccess:        ptr.To(c.AllowNonRootAccess()),
		SessionIdleTimeoutMinutes: ptr.To(c.SessionIdleTimeoutMinutes()),
	}

	return rawConfig, nil
}

func (f *File) DefaultCellCount() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.DefaultCellCount, *defaultFileConfig.DefaultCellCount)
}

func (f *File) CarryOverCurrents() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.CarryOverCurrents, *defaultFileConfig.CarryOverCurrents)
}

func (f *File) MinTemperature() float64 {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.MinTemperature, *defaultFileConfig.MinTemperature)
}

func (f *File) MaxTemperature() float64 {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.MaxTemperature, *defaultFileConfig.MaxTemperature)
}

func (f *File) AllowNonRootAccess() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.AllowNonRootAccess, *defaultFileConfig.AllowNonRootAccess)
}

func (f *File) SessionIdleTimeoutMinutes() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ptr.Deref(f.c.SessionIdleTimeoutMinutes, *defaultFileConfig.SessionIdleTimeoutMinutes)
}

func (f *File) SetDefaultCellCount(i int) {
	if f.c == nil {
		panic("config is nil")
	}

	if cell.ValidateCount(i) != nil {
		panic("default cell count must be between 1 and 20")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.DefaultCellCount = &i
}

func (f *File) SetCarryOverCurrents(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.CarryOverCurrents = &b
}

func (f *File) SetTemperatureRange(min, max float64) {
	if f.c == nil {
		panic("config is nil")
	}

	if min > max {
		panic("min temperature must not be greater than max temperature")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.MinTemperature = &min
	f.c.MaxTemperature = &max
}

func (f *File) SetAllowNonRootAccess(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.c.AllowNonRootAccess = &b
}

func (f *File) SetSessionIdleTimeoutMinutes(i int) {
	if f.c == nil {
		panic("config is nil")
	}

	if i < 0 {
		panic("session idle timeout must not be negative")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.c.SessionIdleTimeoutMinutes = &i
}

// isYAML tells whether the config file should be read and written as YAML
// instead of JSON, based on its extension.
func (f *File) isYAML() bool {
	switch strings.ToLower(filepath.Ext(f.filepath)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	if f.isYAML() {
		err = yaml.Unmarshal(b, &conf)
	} else {
		err = json.Unmarshal(b, &conf)
	}
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	if conf.DefaultCellCount != nil {
		if err := cell.ValidateCount(*conf.DefaultCellCount); err != nil {
			return pkgerrors.Wrapf(err, "invalid defaultCellCount in %s", f.filepath)
		}
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	if f.isYAML() {
		enc := yaml.NewEncoder(fp)
		enc.SetIndent(2)
		err = enc.Encode(f.c)
		if err == nil {
			err = enc.Close()
		}
	} else {
		enc := json.NewEncoder(fp)
		enc.SetIndent("", "  ")
		err = enc.Encode(f.c)
	}
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"defaultCellCount":          f.DefaultCellCount(),
		"carryOverCurrents":         f.CarryOverCurrents(),
		"minTemperature":            f.MinTemperature(),
		"maxTemperature":            f.MaxTemperature(),
		"allowNonRootAccess":        f.AllowNonRootAccess(),
		"sessionIdleTimeoutMinutes": f.SessionIdleTimeoutMinutes(),
	}
}
