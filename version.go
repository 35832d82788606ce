package fcitx5_fbterm

import (
	"fmt"
	"regexp"
	"runtime/debug"
	"strconv"
)

const raw_version = "0.2.0"
const WebsiteBaseURL = "https://github.com/fcitx/fcitx5-fbterm/"

type VersionType struct {
	Major, Minor, Patch int
}

func (self VersionType) String() string {
	return fmt.Sprint(self.Major, ".", self.Minor, ".", self.Patch)
}

var VersionString string
var Version VersionType
var VCSRevision string

func parse_version(raw string) (ans VersionType, err error) {
	verpat := regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)$`)
	matches := verpat.FindStringSubmatch(raw)
	if matches == nil {
		return ans, fmt.Errorf("Invalid version: %#v", raw)
	}
	for i, x := range []*int{&ans.Major, &ans.Minor, &ans.Patch} {
		if *x, err = strconv.Atoi(matches[i+1]); err != nil {
			return
		}
	}
	return
}

func init() {
	var err error
	if Version, err = parse_version(raw_version); err != nil {
		panic(err)
	}
	VersionString = Version.String()
	bi, ok := debug.ReadBuildInfo()
	if ok {
		for _, bs := range bi.Settings {
			if bs.Key == "vcs.revision" {
				VCSRevision = bs.Value
			}
		}
	}
}
