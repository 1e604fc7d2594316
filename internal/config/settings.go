package config

// CatalogSettings exposes catalog credentials and language preference to the
// catalog client without handing it the whole Config.
type CatalogSettings struct {
	cfg *Config
}

// CatalogSettings returns a read-only accessor over the catalog section.
func (c *Config) CatalogSettings() CatalogSettings {
	return CatalogSettings{cfg: c}
}

func (s CatalogSettings) CatalogToken() string {
	if s.cfg == nil {
		return ""
	}
	return s.cfg.Catalog.Token
}

func (s CatalogSettings) CatalogAPIKey() string {
	if s.cfg == nil {
		return ""
	}
	return s.cfg.Catalog.APIKey
}

func (s CatalogSettings) CatalogPIN() string {
	if s.cfg == nil {
		return ""
	}
	return s.cfg.Catalog.PIN
}

func (s CatalogSettings) PreferredLanguage() string {
	if s.cfg == nil {
		return defaultCatalogLanguage
	}
	return s.cfg.Catalog.Language
}
