package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type rolesFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// DefaultRoles is used when no roles file is configured.
// Capabilities are glob patterns matched against names such as "approve-sales-order".
func DefaultRoles() map[string][]string {
	return map[string][]string{
		"admin": {"*"},
		"purchaser": {
			"*-purchase-order",
			"*-transport-order",
			"manage-ownership",
		},
		"sales": {
			"submit-sales-order",
			"send-sales-order",
			"upload-contract-sales-order",
			"register-down-payment-sales-order",
			"complete-sales-order",
			"cancel-sales-order",
			"*-quote",
			"manage-invitation",
			"manage-ownership",
		},
		"sales_manager": {
			"*-sales-order",
			"*-quote",
			"manage-invitation",
			"manage-ownership",
			"recalculate-stock",
			"export-calculation",
		},
		"workshop": {
			"*-service-order",
			"*-work-order",
		},
		"finance": {
			"*-document",
			"register-payment-purchase-order",
			"register-payment-sales-order",
			"export-calculation",
			"recalculate-stock",
		},
	}
}

func loadRoles(path string) (map[string][]string, error) {
	if path == "" {
		return DefaultRoles(), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roles file: %w", err)
	}
	var parsed rolesFile
	if err := yaml.Unmarshal(content, &parsed); err != nil {
		return nil, fmt.Errorf("parse roles file: %w", err)
	}
	if len(parsed.Roles) == 0 {
		return nil, fmt.Errorf("roles file %s defines no roles", path)
	}
	return parsed.Roles, nil
}
