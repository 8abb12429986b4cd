package common

// FernVersion is the current Fern front-end version as a string.
const FernVersion string = "0.1.0"

// FernProjectFileName is the name for Fern project files.
const FernProjectFileName string = "fern.toml"

// FernFileExt is the file extension for a Fern source file.
const FernFileExt string = ".fern"

// FernCacheDir is the default analysis caching directory name.
const FernCacheDir string = ".fern"
