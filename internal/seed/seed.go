// Package seed loads the initial contact dataset from a YAML file.
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"contactbook/internal/model"
)

// record is the on-disk shape of a seed contact. The favorite flag and id
// are optional; the engine defaults and assigns them respectively.
type record struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Email    string  `yaml:"email"`
	Phone    string  `yaml:"phone"`
	Location *string `yaml:"location"`
	Address  *string `yaml:"address"`
	Birthday *string `yaml:"birthday"`
	Favorite *bool   `yaml:"favorite"`
}

// Load reads seed contacts from the file at path. An empty path yields no
// contacts. Seed records are treated as already well-formed external input;
// they are converted, not re-validated.
func Load(path string) ([]model.Contact, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	return Parse(data)
}

// Parse decodes seed contacts from YAML bytes.
func Parse(data []byte) ([]model.Contact, error) {
	var records []record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	contacts := make([]model.Contact, 0, len(records))
	for _, r := range records {
		c := model.Contact{
			ID:       r.ID,
			Name:     r.Name,
			Email:    r.Email,
			Phone:    r.Phone,
			Location: r.Location,
			Address:  r.Address,
			Birthday: r.Birthday,
		}
		if r.Favorite != nil {
			c.IsFavorite = *r.Favorite
		}
		contacts = append(contacts, c)
	}

	return contacts, nil
}
