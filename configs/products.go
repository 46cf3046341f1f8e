package configs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"lending-service/internal/models"
)

type productCatalogue struct {
	Products []*models.LoanProduct `yaml:"products"`
}

// LoadProducts reads the loan product catalogue from a YAML file
func LoadProducts(path string) ([]*models.LoanProduct, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read product catalogue: %w", err)
	}
	return ParseProducts(data)
}

// ParseProducts decodes and validates a YAML product catalogue
func ParseProducts(data []byte) ([]*models.LoanProduct, error) {
	var catalogue productCatalogue
	if err := yaml.Unmarshal(data, &catalogue); err != nil {
		return nil, fmt.Errorf("failed to parse product catalogue: %w", err)
	}

	for _, p := range catalogue.Products {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid product %q: %w", p.Name, err)
		}
	}

	return catalogue.Products, nil
}
