package server

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LoadServerConfig reads and parses the hubclusterd config file.
//
// It PANICS when the file parses but required fields are missing or
// malformed. Misconfiguration should stop the daemon at startup.
func LoadServerConfig(filepath string) (*ServerConfig, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content)
}

// Unmarshal parses conf as YAML and seals it into a ServerConfig.
func Unmarshal(conf []byte) (*ServerConfig, error) {
	var raw *ServerConfigMarshall
	if err := yaml.Unmarshal(conf, &raw); err != nil {
		return nil, err
	}
	return TrySeal(raw), nil
}
