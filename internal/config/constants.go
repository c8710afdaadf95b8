package config

import (
	"strings"
	"time"
)

const SourceFileExt = ".java"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".java", ".jt"}

// SettingsFileNames are looked up, in order, by FindSettings.
var SettingsFileNames = []string{"javatrace.yaml", "javatrace.yml"}

// DefaultMaxCallDepth is the call-stack ceiling when no settings file
// overrides it.
const DefaultMaxCallDepth = 256

// MaxCallDepthLimit is the highest call depth any setting may ask for. Each
// call nests several Go frames, so deeper stacks risk the goroutine limit.
const MaxCallDepthLimit = 10000

// DefaultMaxSteps bounds the steps one run may record.
const DefaultMaxSteps = 100000

// DefaultRequestTimeout bounds one run served over RPC.
const DefaultRequestTimeout = 10 * time.Second

// EntryPointName is the function whose header is treated as the program
// entry rather than a callable definition.
const EntryPointName = "main"

// Declared type keywords
const (
	IntTypeName     = "int"
	LongTypeName    = "long"
	ShortTypeName   = "short"
	ByteTypeName    = "byte"
	DoubleTypeName  = "double"
	FloatTypeName   = "float"
	StringTypeName  = "String"
	CharTypeName    = "char"
	BooleanTypeName = "boolean"
	VoidTypeName    = "void"
)

// DeclaredTypeNames lists every keyword accepted in a declaration.
var DeclaredTypeNames = []string{
	IntTypeName, LongTypeName, ShortTypeName, ByteTypeName,
	DoubleTypeName, FloatTypeName,
	StringTypeName, CharTypeName,
	BooleanTypeName,
}

// Scanner read methods
const (
	NextIntMethod     = "nextInt"
	NextLongMethod    = "nextLong"
	NextDoubleMethod  = "nextDouble"
	NextBooleanMethod = "nextBoolean"
	NextLineMethod    = "nextLine"
	NextMethod        = "next"
)

var ReadMethodNames = []string{
	NextIntMethod, NextLongMethod, NextDoubleMethod,
	NextBooleanMethod, NextLineMethod, NextMethod,
}

// Console output targets
const (
	PrintlnTarget = "System.out.println"
	PrintTarget   = "System.out.print"
)

// IsSourceFile checks if a path has a recognized source extension
func IsSourceFile(path string) bool {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// TrimSourceExt removes a recognized source extension for display.
func TrimSourceExt(path string) string {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return strings.TrimSuffix(path, ext)
		}
	}
	return path
}

// Version is reported by `javatrace version`.
const Version = "0.1.0"
