package config

import (
	"io/ioutil"
	"os"
	"path"

	"gopkg.in/yaml.v2"

	"siginspect/classifier"
	"siginspect/log"
)

const (
	configFileEnvVar  = "SIGINSPECT_CONF"
	defaultConfigFile = ".siginspect.yaml"
)

// Config is the operator-tunable part of the toolkit.
type Config struct {
	// ClassifierID selects the verifier's classifier.
	ClassifierID string `yaml:"classifierid"`
	// BatchSize bounds concurrent signer-group decoding for archives.
	BatchSize int64 `yaml:"batchsize"`
	// Trace enables trace logging.
	Trace bool `yaml:"trace"`
}

func defaults() Config {
	return Config{
		ClassifierID: classifier.CentroidID,
		BatchSize:    4,
	}
}

// Path resolves the config file location: the SIGINSPECT_CONF
// environment variable wins, otherwise the file lives in the home
// directory.
func Path() string {
	if p := os.Getenv(configFileEnvVar); p != "" {
		return p
	}

	home, err := os.UserHomeDir()
	if err != nil {
		log.Warning.Println("failed to resolve home directory, using current directory")
		return defaultConfigFile
	}
	return path.Join(home, defaultConfigFile)
}

// Load reads the config file. A missing file is not an error: you get
// the defaults.
func Load() Config {
	config := defaults()

	content, err := ioutil.ReadFile(Path())
	if err != nil {
		return config
	}

	if err := yaml.Unmarshal(content, &config); err != nil {
		log.Warning.Printf("failed to parse %s, using defaults: %v", Path(), err)
		return defaults()
	}

	if config.ClassifierID == "" {
		config.ClassifierID = classifier.CentroidID
	}
	if config.BatchSize < 1 {
		config.BatchSize = defaults().BatchSize
	}

	return config
}

// Save writes the config back to its file.
func (c Config) Save() error {
	content, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(Path(), content, 0600)
}
