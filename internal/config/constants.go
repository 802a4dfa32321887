package config

// FragmentFileExt is the canonical module fragment extension.
const FragmentFileExt = ".bpm.yaml"

// FragmentFileExts are all recognized module fragment extensions.
var FragmentFileExts = []string{".bpm.yaml", ".bpm.yml"}

// CacheDirName is the per-project directory holding the validation cache.
const CacheDirName = ".blueprint"

// CacheFileName is the validation cache database file.
const CacheFileName = "validate.db"
