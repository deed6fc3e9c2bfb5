package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	AppConfigDirName string = ".biolinks"
)

var (
	appPath         string
	appBiolinksPath string
)

func AppPath() string {
	if appPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			panic(err)
		}
		appPath = cwd
	}

	return appPath
}

// SetAppPath overrides the working directory used to resolve relative paths.
func SetAppPath(path string) {
	appPath = path
	appBiolinksPath = ""
}

func AppBiolinksPath() string {
	if appBiolinksPath == "" {
		appBiolinksPath = filepath.Join(AppPath(), AppConfigDirName)
	}
	return appBiolinksPath
}

func GetAppRelativePath(absolutePath string) string {
	if strings.HasPrefix(absolutePath, AppPath()+string(filepath.Separator)) {
		return absolutePath[len(AppPath())+1:]
	}
	return absolutePath
}
