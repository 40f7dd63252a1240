package domain

import (
	"errors"
	"strings"
)

// ErrUnknownCategory is returned when a label does not name one of the four houses.
var ErrUnknownCategory = errors.New("unknown category")

// Category is the house a task belongs to.
type Category string

const (
	Gryffindor Category = "grifinoria"
	Slytherin  Category = "sonserina"
	Ravenclaw  Category = "corvinal"
	Hufflepuff Category = "lufa-lufa"
)

// DefaultCategory is the house selected before the user picks one.
const DefaultCategory = Gryffindor

type categoryInfo struct {
	name     string
	from, to string
}

var categoryTable = map[Category]categoryInfo{
	Gryffindor: {name: "Grifinória", from: "red-600", to: "yellow-500"},
	Slytherin:  {name: "Sonserina", from: "green-600", to: "emerald-400"},
	Ravenclaw:  {name: "Corvinal", from: "blue-600", to: "sky-400"},
	Hufflepuff: {name: "Lufa-Lufa", from: "yellow-600", to: "amber-400"},
}

// Categories lists the houses in display order.
func Categories() []Category {
	return []Category{Gryffindor, Slytherin, Ravenclaw, Hufflepuff}
}

// Valid reports whether c is one of the four houses.
func (c Category) Valid() bool {
	_, ok := categoryTable[c]
	return ok
}

// DisplayName returns the localized house name.
func (c Category) DisplayName() string {
	if info, ok := categoryTable[c]; ok {
		return info.name
	}
	return categoryTable[DefaultCategory].name
}

// Colors returns the gradient stops used to paint the house badge.
func (c Category) Colors() (from, to string) {
	info, ok := categoryTable[c]
	if !ok {
		info = categoryTable[DefaultCategory]
	}
	return info.from, info.to
}

// ParseCategory accepts a house label or display name, ignoring case.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, categoryTable[c].name) {
			return c, nil
		}
	}
	return "", ErrUnknownCategory
}
