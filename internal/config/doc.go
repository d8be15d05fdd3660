// SPDX-License-Identifier: MPL-2.0

// Package config loads tool configuration from a CUE file, layered under
// viper so that defaults, the config file, and DOCKSTATE_* environment
// variables compose in the usual precedence order.
package config
