// Package constants defines application-wide constants and version information.
package constants

import "runtime"

// AppName is used in logs and the version banner
const AppName = "wxreport"

// Version holds the application version information
const Version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH
