package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/deisishop/internal/fetch"
)

type productCmd struct {
	env *env
}

func newProductCmd(e *env) (command, error) {
	return &productCmd{env: e}, nil
}

func (c *productCmd) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: product <id>")
	}

	state := fetch.Product(c.env.loader, c.env.catalogClient(), args[0]).Load(ctx)
	if state.Status == fetch.StatusError {
		return state.Err
	}
	if state.Data == nil {
		return errors.New("product not found")
	}

	store, err := c.env.cartStore(ctx)
	if err != nil {
		return err
	}
	d := c.env.renderer().Detail(*state.Data, store)

	fmt.Fprintf(c.env.out, "%s (#%d)\n", d.Title, d.ID)
	fmt.Fprintf(c.env.out, "Category: %s\n", d.Category)
	fmt.Fprintf(c.env.out, "Price:    %s\n", d.PriceFmt)
	fmt.Fprintf(c.env.out, "Rating:   %s %s\n", d.Rating.Display, d.Rating.Summary)
	if d.ImageURL != "" {
		fmt.Fprintf(c.env.out, "Image:    %s\n", d.ImageURL)
	}
	if d.InCart {
		fmt.Fprintf(c.env.out, "In cart:  %d\n", d.Quantity)
	}
	if d.Description != "" {
		fmt.Fprintf(c.env.out, "\n%s\n", d.Description)
	}
	return nil
}

type categoriesCmd struct {
	env *env
}

func newCategoriesCmd(e *env) (command, error) {
	return &categoriesCmd{env: e}, nil
}

func (c *categoriesCmd) run(ctx context.Context, _ []string) error {
	state := fetch.Categories(c.env.loader, c.env.catalogClient()).Load(ctx)
	if state.Status == fetch.StatusError {
		return state.Err
	}
	for _, category := range state.Data {
		fmt.Fprintln(c.env.out, category)
	}
	return nil
}
