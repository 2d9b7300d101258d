package orders

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/slooze/foodorder/internal/rbac"
)

type regionLocale struct {
	unit currency.Unit
	tag  language.Tag
}

var locales = map[rbac.Region]regionLocale{
	rbac.RegionIndia:   {unit: currency.INR, tag: language.MustParse("en-IN")},
	rbac.RegionAmerica: {unit: currency.USD, tag: language.AmericanEnglish},
}

// CurrencyFor returns the ISO currency code used to display amounts in region.
func CurrencyFor(region rbac.Region) string {
	if l, ok := locales[region]; ok {
		return l.unit.String()
	}
	return currency.USD.String()
}

// FormatAmount renders amount with the currency symbol of region.
func FormatAmount(region rbac.Region, amount decimal.Decimal) string {
	l, ok := locales[region]
	if !ok {
		l = locales[rbac.RegionAmerica]
	}
	p := message.NewPrinter(l.tag)
	return p.Sprint(currency.Symbol(l.unit.Amount(amount.InexactFloat64())))
}
