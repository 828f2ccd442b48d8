package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// ProductResult represents one catalog product.
type ProductResult struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	ProductType  string  `json:"product_type"`
	Mark         *string `json:"mark,omitempty"`
	Fraction     *string `json:"fraction,omitempty"`
	PricePerUnit int64   `json:"price_per_unit"`
	Unit         string  `json:"unit"`
	Available    bool    `json:"available"`
	Description  string  `json:"description,omitempty"`
}

// ProductsResponse represents the products API response.
type ProductsResponse struct {
	Products []ProductResult `json:"products"`
}

// ProductsCmd creates the products command.
func ProductsCmd() *cobra.Command {
	var (
		productType string
		mark        string
		fraction    string
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List catalog products",
		Long:  "Lists available products, optionally filtered by type, mark or fraction.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runProducts(api, productType, mark, fraction, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&productType, "type", "t", "", "Filter by product type")
	cmd.Flags().StringVarP(&mark, "mark", "m", "", "Filter by mark (e.g. М300)")
	cmd.Flags().StringVarP(&fraction, "fraction", "f", "", "Filter by fraction (e.g. 5-20)")

	return cmd
}

func runProducts(api *APIClient, productType, mark, fraction string, outputJSON bool) error {
	query := url.Values{}
	if productType != "" {
		query.Set("product_type", productType)
	}
	if mark != "" {
		query.Set("mark", mark)
	}
	if fraction != "" {
		query.Set("fraction", fraction)
	}

	path := "/products"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("products request failed: %w", err)
	}

	var productsResp ProductsResponse
	if err := json.Unmarshal(resp.Data, &productsResp); err != nil {
		return fmt.Errorf("failed to parse products: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(productsResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(productsResp.Products) == 0 {
		fmt.Println("No products found.")
		return nil
	}

	for _, p := range productsResp.Products {
		fmt.Printf("%d. %s\n", p.ID, p.Name)
		attrs := ""
		if p.Mark != nil {
			attrs += " mark=" + *p.Mark
		}
		if p.Fraction != nil {
			attrs += " fraction=" + *p.Fraction
		}
		fmt.Printf("   %s%s, %d руб./%s\n", p.ProductType, attrs, p.PricePerUnit, p.Unit)
		if p.Description != "" {
			fmt.Printf("   %s\n", p.Description)
		}
	}

	return nil
}
