// Package seed loads a starter catalog into an empty database.
package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Skotchmaster/sweet_shop/internal/service"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
	"github.com/Skotchmaster/sweet_shop/pkg/logging"
)

type Item struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Price       string `yaml:"price"`
	Quantity    int    `yaml:"quantity"`
}

type Catalog struct {
	Sweets []Item `yaml:"sweets"`
}

func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &c, nil
}

// Apply creates every item through svc when the catalog is empty and
// returns the number of sweets created.
func Apply(ctx context.Context, svc *service.SweetService, c *Catalog) (int, error) {
	l := logging.FromContext(ctx).With("component", "seed")

	count, err := svc.Repo.CountSweets(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		l.Info("seed_skipped", "existing", count)
		return 0, nil
	}

	created := 0
	for _, it := range c.Sweets {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return created, fmt.Errorf("seed %q: bad price %q: %w", it.Name, it.Price, err)
		}
		if _, err := svc.CreateSweet(ctx, transport.CreateSweetRequest{
			Name:        it.Name,
			Description: it.Description,
			Category:    it.Category,
			Price:       price,
			Quantity:    it.Quantity,
		}); err != nil {
			return created, fmt.Errorf("seed %q: %w", it.Name, err)
		}
		created++
	}
	l.Info("seed_applied", "created", created)
	return created, nil
}
