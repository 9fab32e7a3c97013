package version

var Version = "0.2.0"
