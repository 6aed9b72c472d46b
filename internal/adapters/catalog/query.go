package catalog

import (
	"math"

	"github.com/okian/stockwatch/internal/domain/model"
)

// productsQuery fetches one event product by url key together with its
// bundle kits and their option stock.
const productsQuery = `query Products($urlKey: String!) {
  products(filter: { url_key: { eq: $urlKey } }) {
    total_count
    items {
      __typename
      ... on SimpleProduct {
        name
        sku
        url_key
        related_products {
          name
          sku
          ... on BundleProduct {
            items {
              title
              options {
                label
                quantity
              }
            }
          }
        }
      }
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type productsResponse struct {
	Data *struct {
		Products *struct {
			TotalCount int            `json:"total_count"`
			Items      []*productItem `json:"items"`
		} `json:"products"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type productItem struct {
	Name            string            `json:"name"`
	SKU             string            `json:"sku"`
	URLKey          string            `json:"url_key"`
	RelatedProducts []*relatedProduct `json:"related_products"`
}

type relatedProduct struct {
	Name  string        `json:"name"`
	SKU   string        `json:"sku"`
	Items []*bundleItem `json:"items"`
}

type bundleItem struct {
	Title   string          `json:"title"`
	Options []*bundleOption `json:"options"`
}

type bundleOption struct {
	Label    string   `json:"label"`
	Quantity *float64 `json:"quantity"`
}

// toRecord maps the wire shape onto the domain record. Branches the catalog
// left out stay nil; options without a quantity are dropped.
func (p *productItem) toRecord(id model.Identifier) *model.InventoryRecord {
	rec := &model.InventoryRecord{EventName: p.Name, URLKey: p.URLKey}
	if rec.URLKey == "" {
		rec.URLKey = string(id)
	}
	if p.RelatedProducts == nil {
		return rec
	}

	rec.Related = make([]*model.SubProduct, 0, len(p.RelatedProducts))
	for _, rp := range p.RelatedProducts {
		if rp == nil {
			continue
		}
		sp := &model.SubProduct{Name: rp.Name, SKU: rp.SKU}
		if rp.Items != nil {
			sp.Items = make([]*model.KitItem, 0, len(rp.Items))
			for _, it := range rp.Items {
				if it == nil {
					continue
				}
				ki := &model.KitItem{Title: it.Title}
				if it.Options != nil {
					ki.Options = make([]*model.Option, 0, len(it.Options))
					for _, o := range it.Options {
						if o == nil || o.Quantity == nil {
							continue
						}
						ki.Options = append(ki.Options, &model.Option{
							Label:    o.Label,
							Quantity: int(math.Floor(*o.Quantity)),
						})
					}
				}
				sp.Items = append(sp.Items, ki)
			}
		}
		rec.Related = append(rec.Related, sp)
	}
	return rec
}
