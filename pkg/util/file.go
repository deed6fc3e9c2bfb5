package util

import (
	"os"
	"strings"
)

// We have to manually swap out environment variables,
// as Viper's AutomaticEnv() doesn't work with Unmarshal() and the workarounds do not work for nested structures.
// See https://github.com/spf13/viper/issues/761
func ReplaceEnvVariablesFromPath(filePath string, envVarPrefix string) ([]byte, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return []byte(ReplaceEnvVariables(string(content), envVarPrefix, os.Environ())), nil
}

// ReplaceEnvVariables substitutes every prefixed KEY=value pair of environ into content.
func ReplaceEnvVariables(content string, envVarPrefix string, environ []string) string {
	for _, envVarValPair := range environ {
		if !strings.HasPrefix(envVarValPair, envVarPrefix) {
			continue
		}
		parts := strings.SplitN(envVarValPair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		content = strings.ReplaceAll(content, parts[0], parts[1])
	}

	return content
}
