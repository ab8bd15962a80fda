package config

import "strings"

// AppVersion is the version of the engine, set at build time.
var AppVersion string

// AppName is the name of the application.
const AppName = "Halook"

// LogWinSubDir is the sub directory for the log files on windows.
var LogWinSubDir = AppName

// LogSubDir is the sub directory for the log files.
var LogSubDir = "." + strings.ToLower(AppName)

// LogExt is the extension for the log files.
var LogExt = ".log"

// DefaultServerAddr is where the local bridge listens unless configured.
const DefaultServerAddr = "127.0.0.1:49452"
