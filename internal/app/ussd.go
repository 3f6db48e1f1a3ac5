package app

import (
	"fmt"
	"strings"
)

const ussdMainMenu = `CON Welcome to Sakanka - Voice Marketplace
1. Sell Product (Voice)
2. Buy Product (Voice)
3. My Listings
4. Check Balance`

// USSDReply walks the marketplace USSD menu. text is the *-joined input
// trail supplied by the gateway; an empty trail shows the main menu.
// Replies start with CON (session continues) or END (session over).
func (l *Listings) USSDReply(phone, text string) string {
	switch {
	case text == "":
		return ussdMainMenu
	case text == "1":
		return `CON Sell Your Product
1. Record voice description
2. Enter manually
0. Back to main menu`
	case text == "2":
		return `CON What do you want to buy?
1. Food & Groceries
2. Clothing
3. Electronics
4. Other
0. Back to main menu`
	case text == "3":
		return l.ussdListings(phone)
	case text == "1*1":
		return `END Please call +233XXXXXXXXX to record your product description. Our AI will guide you through the process in Twi, Ga, or Hausa.`
	case text == "1*2":
		return `CON Enter product name:`
	case strings.HasSuffix(text, "*0"):
		return ussdMainMenu
	default:
		return `END Thank you for using Sakanka. Call our voice line for full features: +233XXXXXXXXX`
	}
}

func (l *Listings) ussdListings(phone string) string {
	products, err := l.MyListings(phone)
	if err != nil {
		return `END Service error. Please try again later.`
	}
	if len(products) == 0 {
		return `END You have no active listings.`
	}
	var b strings.Builder
	b.WriteString("CON Your Listings:\n")
	for i, p := range products {
		fmt.Fprintf(&b, "%d. %s - GHS %g\n", i+1, p.Title, p.Price)
	}
	b.WriteString("0. Back")
	return b.String()
}
