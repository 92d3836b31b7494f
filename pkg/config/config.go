package config

import "github.com/sirupsen/logrus"

type Config interface {
	DefaultCellCount() int
	CarryOverCurrents() bool
	MinTemperature() float64
	MaxTemperature() float64
	AllowNonRootAccess() bool
	SessionIdleTimeoutMinutes() int

	SetDefaultCellCount(int)
	SetCarryOverCurrents(bool)
	SetTemperatureRange(min, max float64)
	SetAllowNonRootAccess(bool)
	SetSessionIdleTimeoutMinutes(int)

	LogrusFields() logrus.Fields

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
