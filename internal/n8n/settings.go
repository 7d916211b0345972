package n8n

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// Settings groups, in display order.
const (
	GroupCommunity = "community"
	GroupPackage   = "package"
	GroupExternal  = "external nodes"
	GroupInstall   = "install"
	GroupLicense   = "license"
)

const maxSettingValue = 100

// Setting is one top-level key of the settings document with a display value.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SettingsSummary is a condensed view of /rest/settings.
type SettingsSummary struct {
	Settings   []Setting           `json:"settings"`
	Groups     map[string][]string `json:"groups"`
	VersionCLI string              `json:"versionCli,omitempty"`
}

// Settings returns the raw /rest/settings document.
func (c *Client) Settings(ctx context.Context) ([]byte, error) {
	resp, err := c.get(ctx, "/rest/settings")
	if err != nil {
		return nil, fmt.Errorf("fetching settings: %w", err)
	}
	return resp.Body, nil
}

// SummarizeSettings lists the keys under "data" and groups the ones related
// to community packages, installation and licensing.
func SummarizeSettings(body []byte) (*SettingsSummary, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("settings response is not valid JSON")
	}
	data := gjson.GetBytes(body, "data")
	if !data.IsObject() {
		return nil, fmt.Errorf("settings response has no data object")
	}

	s := &SettingsSummary{Groups: map[string][]string{}}
	data.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		s.Settings = append(s.Settings, Setting{Key: key, Value: displayValue(v)})
		if g := settingGroup(key); g != "" {
			s.Groups[g] = append(s.Groups[g], key)
		}
		return true
	})
	sort.Slice(s.Settings, func(i, j int) bool { return s.Settings[i].Key < s.Settings[j].Key })
	for g := range s.Groups {
		sort.Strings(s.Groups[g])
	}
	s.VersionCLI = data.Get("versionCli").String()
	return s, nil
}

// settingGroup classifies a key by substring; the first match wins.
func settingGroup(key string) string {
	k := strings.ToLower(key)
	switch {
	case strings.Contains(k, "community"):
		return GroupCommunity
	case strings.Contains(k, "package"):
		return GroupPackage
	case strings.Contains(k, "node") && strings.Contains(k, "external"):
		return GroupExternal
	case strings.Contains(k, "install"), strings.Contains(k, "npm"), strings.Contains(k, "registry"):
		return GroupInstall
	case strings.Contains(k, "license"), strings.Contains(k, "enterprise"):
		return GroupLicense
	}
	return ""
}

func displayValue(v gjson.Result) string {
	switch {
	case v.IsArray():
		return fmt.Sprintf("list (%d items)", len(v.Array()))
	case v.IsObject():
		n := 0
		v.ForEach(func(_, _ gjson.Result) bool { n++; return true })
		return fmt.Sprintf("object (%d items)", n)
	case v.Type == gjson.String:
		s := v.String()
		if len(s) > maxSettingValue {
			s = s[:maxSettingValue-3] + "..."
		}
		return s
	}
	return v.Raw
}
