package core

import (
	"os"

	"github.com/pgcommunity/pgsite/util"
)

// SiteConfig carries site-wide presentation values.
type SiteConfig struct {
	Brand string // sender attribution for announcement mails
	Title string
}

// LoadSiteConfig reads config/site.ini. A missing file is not an error, the
// defaults apply.
func LoadSiteConfig() (SiteConfig, error) {

	var config = SiteConfig{
		Brand: "PostgreSQL Announce",
		Title: "PostgreSQL community site",
	}

	values, err := util.Ini("site.ini")
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}

	if brand, ok := values["brand"]; ok && brand != "" {
		config.Brand = brand
	}
	if title, ok := values["title"]; ok && title != "" {
		config.Title = title
	}

	return config, nil
}
