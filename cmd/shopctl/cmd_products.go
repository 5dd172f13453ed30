package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/fjod/deisishop/internal/domain"
	"github.com/fjod/deisishop/internal/fetch"
	"github.com/fjod/deisishop/internal/view"
	"github.com/fjod/deisishop/internal/viewmodel"
)

type productsCmd struct {
	env *env
}

func newProductsCmd(e *env) (command, error) {
	return &productsCmd{env: e}, nil
}

func (c *productsCmd) run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	search := fs.String("search", "", "only products whose title contains `text`")
	sortKey := fs.String("sort", "", "name-asc, name-desc, price-asc or price-desc")
	if err := fs.Parse(args); err != nil {
		return err
	}

	state := fetch.Products(c.env.loader, c.env.catalogClient()).Load(ctx)
	if state.Status == fetch.StatusError {
		return state.Err
	}
	return printProducts(ctx, c.env, state.Data, *search, *sortKey)
}

type categoryCmd struct {
	env *env
}

func newCategoryCmd(e *env) (command, error) {
	return &categoryCmd{env: e}, nil
}

func (c *categoryCmd) run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("category", flag.ContinueOnError)
	search := fs.String("search", "", "only products whose title contains `text`")
	sortKey := fs.String("sort", "", "name-asc, name-desc, price-asc or price-desc")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: category [-search text] [-sort key] <category>")
	}

	state := fetch.CategoryProducts(c.env.loader, c.env.catalogClient(), fs.Arg(0)).Load(ctx)
	if state.Status == fetch.StatusError {
		return state.Err
	}
	return printProducts(ctx, c.env, state.Data, *search, *sortKey)
}

func printProducts(ctx context.Context, e *env, products []domain.Product, search, sortKey string) error {
	vm := viewmodel.NewCatalog(e.projector())
	vm.SetProducts(products)
	vm.SetSearch(search)
	vm.SetSort(viewmodel.ParseSortKey(sortKey))

	store, err := e.cartStore(ctx)
	if err != nil {
		return err
	}
	cards := e.renderer().Cards(vm.Visible(), store)
	if len(cards) == 0 {
		fmt.Fprintln(e.out, "No products found.")
		return nil
	}

	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tRATING\tCART")
	for _, card := range cards {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", card.ID, card.Title, card.PriceFmt, card.Rating.Display, cartMark(card))
	}
	return tw.Flush()
}

func cartMark(card view.Card) string {
	if !card.InCart {
		return ""
	}
	return fmt.Sprintf("x%d", card.Quantity)
}
