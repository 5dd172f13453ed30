package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/fjod/deisishop/internal/cart"
	"github.com/fjod/deisishop/internal/catalog"
	"github.com/fjod/deisishop/internal/fetch"
)

type addCmd struct {
	env *env
}

func newAddCmd(e *env) (command, error) {
	return &addCmd{env: e}, nil
}

func (c *addCmd) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: add <product id>")
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
	if err := store.Add(ctx, *state.Data); err != nil {
		return err
	}
	fmt.Fprintf(c.env.out, "Added %s (now %d in cart)\n", state.Data.Title, store.Quantity(state.Data.ID))
	return nil
}

type removeCmd struct {
	env *env
}

func newRemoveCmd(e *env) (command, error) {
	return &removeCmd{env: e}, nil
}

func (c *removeCmd) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: remove <product id>")
	}
	id, err := catalog.ParseID(args[0])
	if err != nil {
		return err
	}

	store, err := c.env.cartStore(ctx)
	if err != nil {
		return err
	}
	if !store.IsInCart(id) {
		fmt.Fprintf(c.env.out, "Product %d is not in the cart\n", id)
		return nil
	}
	if err := store.Remove(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(c.env.out, "Removed one of product %d (%d left)\n", id, store.Quantity(id))
	return nil
}

type cartCmd struct {
	env *env
}

func newCartCmd(e *env) (command, error) {
	return &cartCmd{env: e}, nil
}

func (c *cartCmd) run(ctx context.Context, _ []string) error {
	store, err := c.env.cartStore(ctx)
	if err != nil {
		return err
	}
	return printCart(c.env, store)
}

type clearCmd struct {
	env *env
}

func newClearCmd(e *env) (command, error) {
	return &clearCmd{env: e}, nil
}

func (c *clearCmd) run(ctx context.Context, _ []string) error {
	store, err := c.env.cartStore(ctx)
	if err != nil {
		return err
	}
	if err := store.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.env.out, "Cart cleared")
	return nil
}

func printCart(e *env, store *cart.Store) error {
	v := e.renderer().Cart(store.Lines(), store.ItemCount(), store.Total())
	if len(v.Lines) == 0 {
		fmt.Fprintln(e.out, "Your cart is empty.")
		return nil
	}

	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range v.Lines {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", l.Product.ID, l.Product.Title, l.Quantity, l.Product.PriceFmt, l.Subtotal)
	}
	fmt.Fprintf(tw, "\t\t%d\t\t%s\n", v.ItemCount, v.TotalFmt)
	return tw.Flush()
}
