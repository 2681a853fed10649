package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/glam-abaya/cartstore/internal/core/domain"
)

type cartFeatureContext struct {
	slot  *mockSlot
	store *CartStore
}

func (c *cartFeatureContext) anEmptyCart() error {
	c.slot = &mockSlot{}
	c.store = NewCartStore(context.Background(), c.slot)
	return nil
}

func (c *cartFeatureContext) theDurableSlotContains(payload string) error {
	c.slot.data = []byte(payload)
	return nil
}

func (c *cartFeatureContext) iAddProduct(id string, price, quantity int) error {
	return c.iAddProductInSize(id, price, quantity, "")
}

func (c *cartFeatureContext) iAddProductInSize(id string, price, quantity int, size string) error {
	p := domain.Product{ID: domain.ProductID(id), FinalPrice: decimal.NewFromInt(int64(price))}
	c.store.AddItem(context.Background(), p, quantity, domain.Size(size))
	return nil
}

func (c *cartFeatureContext) iRemoveProductInSize(id, size string) error {
	c.store.RemoveItem(context.Background(), domain.ProductID(id), domain.Size(size))
	return nil
}

func (c *cartFeatureContext) iSetTheQuantity(id, size string, quantity int) error {
	c.store.SetQuantity(context.Background(), domain.ProductID(id), domain.Size(size), quantity)
	return nil
}

func (c *cartFeatureContext) iReloadTheCart() error {
	c.store = NewCartStore(context.Background(), c.slot)
	return nil
}

func (c *cartFeatureContext) theCartIsOpen() error {
	if !c.store.IsOpen() {
		return fmt.Errorf("expected cart to be open")
	}
	return nil
}

func (c *cartFeatureContext) theCartIsClosed() error {
	if c.store.IsOpen() {
		return fmt.Errorf("expected cart to be closed")
	}
	return nil
}

func (c *cartFeatureContext) theCartCountIs(count int) error {
	if got := c.store.TotalCount(); got != count {
		return fmt.Errorf("expected count %d, got %d", count, got)
	}
	return nil
}

func (c *cartFeatureContext) theCartTotalIs(total int) error {
	if got := c.store.TotalValue(); !got.Equal(decimal.NewFromInt(int64(total))) {
		return fmt.Errorf("expected total %d, got %s", total, got)
	}
	return nil
}

func (c *cartFeatureContext) theCartHasLines(lines int) error {
	if got := c.store.Len(); got != lines {
		return fmt.Errorf("expected %d lines, got %d", lines, got)
	}
	return nil
}

func (c *cartFeatureContext) theLineHasQuantity(id, size string, quantity int) error {
	key := domain.LineKey{ProductID: domain.ProductID(id), Size: domain.Size(size)}
	for _, item := range c.store.Items() {
		if item.Key() == key {
			if item.Quantity != quantity {
				return fmt.Errorf("expected quantity %d, got %d", quantity, item.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("no line for product %q size %q", id, size)
}

func InitializeCartScenario(ctx *godog.ScenarioContext) {
	tc := &cartFeatureContext{}

	ctx.Step(`^an empty cart$`, tc.anEmptyCart)
	ctx.Step(`^the durable slot contains "([^"]*)"$`, tc.theDurableSlotContains)

	ctx.Step(`^I add product "([^"]*)" priced (\d+) with quantity (-?\d+)$`, tc.iAddProduct)
	ctx.Step(`^I add product "([^"]*)" priced (\d+) with quantity (-?\d+) in size "([^"]*)"$`, tc.iAddProductInSize)
	ctx.Step(`^I remove product "([^"]*)" in size "([^"]*)"$`, tc.iRemoveProductInSize)
	ctx.Step(`^I set the quantity of product "([^"]*)" in size "([^"]*)" to (-?\d+)$`, tc.iSetTheQuantity)
	ctx.Step(`^I reload the cart$`, tc.iReloadTheCart)

	ctx.Step(`^the cart is open$`, tc.theCartIsOpen)
	ctx.Step(`^the cart is closed$`, tc.theCartIsClosed)
	ctx.Step(`^the cart count is (\d+)$`, tc.theCartCountIs)
	ctx.Step(`^the cart total is (\d+)$`, tc.theCartTotalIs)
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^the line for product "([^"]*)" in size "([^"]*)" has quantity (\d+)$`, tc.theLineHasQuantity)
}

func TestCartFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeCartScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
