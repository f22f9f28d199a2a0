// Package utils provides small system and I/O helpers shared across packages.
package utils
