package news

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category selects a headlines feed.
type Category string

const (
	CategoryGlobal   Category = "global"
	CategoryBusiness Category = "business"
	CategoryTech     Category = "tech"
	CategoryCreator  Category = "creator"
)

// Categories lists the feeds in display order.
var Categories = []Category{CategoryGlobal, CategoryBusiness, CategoryTech, CategoryCreator}

var endpoints = map[Category]string{
	CategoryGlobal:   "top-headlines?country=us",
	CategoryBusiness: "top-headlines?country=us&category=business",
	CategoryTech:     "everything?q=technology&sortBy=publishedAt",
	CategoryCreator:  "everything?q=creator+OR+content+creator+OR+social+media&sortBy=publishedAt",
}

// ParseCategory maps a query value to a category; unknown values fall back to global.
func ParseCategory(s string) Category {
	c := Category(s)
	if _, ok := endpoints[c]; ok {
		return c
	}
	return CategoryGlobal
}

// Title returns the display name of c.
func (c Category) Title() string {
	return cases.Title(language.English).String(string(c))
}
