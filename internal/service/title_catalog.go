package service

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// 内置称号代码
const (
	TitleStreak3    = "streak_3"
	TitleStreak7    = "streak_7"
	TitleStreak14   = "streak_14"
	TitleRegular3   = "regular_3"
	TitleNoon3      = "noon_3"
	TitleNoSleep3   = "no_sleep_3"
	TitleEarlyKing3 = "earlyking_3"
)

//go:embed titles.yaml
var defaultCatalogYAML []byte

// TitleSeed 是称号目录中的一条定义，Description 使用 Markdown
type TitleSeed struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Hidden      bool   `yaml:"hidden"`
	Sort        int    `yaml:"sort"`
}

type catalogFile struct {
	Titles []TitleSeed `yaml:"titles"`
}

// DefaultCatalog 返回内置的称号目录
func DefaultCatalog() ([]TitleSeed, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// ParseCatalog 解析 YAML 称号目录并校验，任何问题都返回 ErrConfiguration
func ParseCatalog(data []byte) ([]TitleSeed, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parse title catalog: %w", ErrConfiguration, err)
	}
	if err := ValidateCatalog(file.Titles); err != nil {
		return nil, err
	}
	return file.Titles, nil
}

// ValidateCatalog 要求 code 与 name 非空且 code 不重复
func ValidateCatalog(seeds []TitleSeed) error {
	if len(seeds) == 0 {
		return fmt.Errorf("%w: title catalog is empty", ErrConfiguration)
	}

	seen := make(map[string]struct{}, len(seeds))
	for i, seed := range seeds {
		code := strings.TrimSpace(seed.Code)
		if code == "" {
			return fmt.Errorf("%w: title #%d has no code", ErrConfiguration, i+1)
		}
		if strings.TrimSpace(seed.Name) == "" {
			return fmt.Errorf("%w: title %q has no name", ErrConfiguration, code)
		}
		if _, dup := seen[code]; dup {
			return fmt.Errorf("%w: duplicate title code %q", ErrConfiguration, code)
		}
		seen[code] = struct{}{}
	}
	return nil
}
