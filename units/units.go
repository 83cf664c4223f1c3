// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package units converts physical quantities between unit systems: plain
// units with SI prefixes ("kPa", "millimeter"), temperature scales, and
// compound unit strings such as "dyne*s/cm^2" or "kilogram/meter^3".
// The pseudo-unit "SI" names the canonical SI unit of the quantity.
package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrUnknownUnit indicates a unit token that cannot be resolved
	ErrUnknownUnit = errors.New("units: unknown unit")
	// ErrBadExponent indicates a malformed ^exponent suffix
	ErrBadExponent = errors.New("units: malformed exponent")
	// ErrTemperature indicates temperature mixed into a factor conversion
	ErrTemperature = errors.New("units: temperature scales have no pure conversion factor")
)

// factors of full unit names to the canonical SI unit
var roots = map[string]float64{
	// distance
	"meter": 1, "micron": 1e-6, "foot": 0.3048, "inch": 0.0254, "yard": 0.9144,
	// mass
	"gram": 0.001, "lbm": 0.45359237, "slug": 14.59390294,
	// time
	"second": 1, "minute": 60, "hour": 3600, "day": 86400,
	// force
	"newton": 1, "dyne": 1e-5, "lbf": 4.44822072,
	// pressure
	"pascal": 1, "psi": 6894.755905511812, "bar": 1e5, "atm": 101325,
	// volume
	"liter": 0.001, "gallon": 0.003785411784,
	// dynamic viscosity
	"poise": 0.1,
}

// SI prefixes by full name
var prefixes = map[string]float64{
	"nano": 1e-9, "micro": 1e-6, "milli": 1e-3, "centi": 1e-2, "deci": 1e-1,
	"kilo": 1e3, "mega": 1e6, "giga": 1e9,
}

// abbreviations of unit roots (matched case-insensitively, before prefix
// splitting so "min" is a minute and not a milli-inch)
var rootAbbrevs = map[string]string{
	"m": "meter", "ft": "foot", "in": "inch", "yd": "yard",
	"g": "gram", "s": "second", "sec": "second", "min": "minute", "hr": "hour",
	"n": "newton", "pa": "pascal", "l": "liter", "gal": "gallon", "p": "poise",
}

// single-character prefix abbreviations (case-sensitive: M is mega, m milli)
var prefixAbbrevs = map[string]float64{
	"n": 1e-9, "u": 1e-6, "m": 1e-3, "c": 1e-2, "d": 1e-1,
	"k": 1e3, "M": 1e6, "G": 1e9,
}

// case-sensitive single letters reserved for temperature and poise
var specials = map[string]string{
	"P": "poise", "K": "kelvin", "C": "celsius", "F": "fahrenheit", "R": "rankine",
}

// whole-unit aliases expanded before parsing
var aliases = map[string]string{
	"gpm": "gallon/minute",
	"cfm": "foot^3/minute",
	"cc":  "centimeter^3",
}

// temperature scale names
var tempScales = map[string]string{
	"k": "kelvin", "kelvin": "kelvin",
	"c": "celsius", "celsius": "celsius",
	"f": "fahrenheit", "fahrenheit": "fahrenheit",
	"r": "rankine", "rankine": "rankine",
}

// isTemperature reports whether the unit names a temperature scale.
// Single letters are case-sensitive so that "P" stays poise.
func isTemperature(unit string) bool {
	if len(unit) == 1 {
		name, ok := specials[unit]
		return ok && name != "poise"
	}
	_, ok := tempScales[strings.ToLower(unit)]
	return ok
}

// tempScale resolves a temperature unit (or "SI") to its scale name
func tempScale(unit string) string {
	if strings.EqualFold(unit, "SI") {
		return "kelvin"
	}
	if len(unit) == 1 {
		return specials[unit]
	}
	return tempScales[strings.ToLower(unit)]
}

// Convert converts value from one unit to another. Temperature scales use
// the affine relations; everything else goes through the SI factor.
func Convert(value float64, from, to string) (float64, error) {

	fromTemp := isTemperature(from)
	toTemp := isTemperature(to)
	if fromTemp || toTemp {
		if !fromTemp && !strings.EqualFold(from, "SI") {
			return 0, fmt.Errorf("%w: cannot convert %q to the %q scale", ErrTemperature, from, to)
		}
		if !toTemp && !strings.EqualFold(to, "SI") {
			return 0, fmt.Errorf("%w: cannot convert the %q scale to %q", ErrTemperature, from, to)
		}
		return convertTemperature(value, tempScale(from), tempScale(to)), nil
	}

	fac, err := ConversionFactor(from, to)
	if err != nil {
		return 0, err
	}
	return value * fac, nil
}

// ConversionFactor returns the multiplicative factor taking from-units to
// to-units. Fails for temperature scales.
func ConversionFactor(from, to string) (float64, error) {
	if isTemperature(from) || isTemperature(to) {
		return 0, ErrTemperature
	}
	ffrom, err := siFactor(from)
	if err != nil {
		return 0, err
	}
	fto, err := siFactor(to)
	if err != nil {
		return 0, err
	}
	return ffrom / fto, nil
}

// convertTemperature applies the affine scale relations via kelvin
func convertTemperature(value float64, from, to string) float64 {
	var kelvin float64
	switch from {
	case "celsius":
		kelvin = value + 273.15
	case "fahrenheit":
		kelvin = (value + 459.67) * 5 / 9
	case "rankine":
		kelvin = value * 5 / 9
	default:
		kelvin = value
	}
	switch to {
	case "celsius":
		return kelvin - 273.15
	case "fahrenheit":
		return kelvin*9/5 - 459.67
	case "rankine":
		return kelvin * 9 / 5
	}
	return kelvin
}

// siFactor resolves a possibly compound unit string to its SI factor
func siFactor(unit string) (float64, error) {
	unit = strings.TrimSpace(unit)
	if strings.EqualFold(unit, "SI") || unit == "" {
		return 1, nil
	}
	if alias, ok := aliases[strings.ToLower(unit)]; ok {
		unit = alias
	}

	factor := 1.0
	for i, part := range strings.Split(unit, "/") {
		for _, comp := range strings.Split(part, "*") {
			f, err := componentFactor(comp)
			if err != nil {
				return 0, err
			}
			if i == 0 {
				factor *= f
			} else {
				factor /= f
			}
		}
	}
	return factor, nil
}

// componentFactor resolves one "name[^exp]" component
func componentFactor(comp string) (float64, error) {
	comp = strings.TrimSpace(comp)
	exp := 1
	if k := strings.Index(comp, "^"); k >= 0 {
		e, err := strconv.Atoi(comp[k+1:])
		if err != nil || e == 0 {
			return 0, fmt.Errorf("%w: %q", ErrBadExponent, comp)
		}
		exp = e
		comp = comp[:k]
	}
	base, err := singleFactor(comp)
	if err != nil {
		return 0, err
	}
	return math.Pow(base, float64(exp)), nil
}

// singleFactor resolves one plain unit token
func singleFactor(tok string) (float64, error) {
	if tok == "" {
		return 0, fmt.Errorf("%w: empty token", ErrUnknownUnit)
	}

	// reserved single letters
	if name, ok := specials[tok]; ok {
		if name == "poise" {
			return roots["poise"], nil
		}
		return 0, fmt.Errorf("%w: temperature %q inside a compound unit", ErrTemperature, tok)
	}

	lower := strings.ToLower(tok)

	// full root name, possibly plural
	if f, ok := roots[lower]; ok {
		return f, nil
	}
	if f, ok := roots[strings.TrimSuffix(lower, "s")]; ok {
		return f, nil
	}

	// full prefix + full root ("kilogram", "centipoise")
	for pre, pf := range prefixes {
		if rest, found := strings.CutPrefix(lower, pre); found {
			if f, ok := roots[rest]; ok {
				return pf * f, nil
			}
			if f, ok := roots[strings.TrimSuffix(rest, "s")]; ok {
				return pf * f, nil
			}
		}
	}

	// root abbreviation ("pa", "min", "ft")
	if name, ok := rootAbbrevs[lower]; ok {
		return roots[name], nil
	}

	// prefix abbreviation + root abbreviation ("kPa", "mm", "uN");
	// the prefix letter is case-sensitive, the root is not
	if pf, ok := prefixAbbrevs[tok[:1]]; ok {
		if name, ok := rootAbbrevs[strings.ToLower(tok[1:])]; ok {
			return pf * roots[name], nil
		}
	}
	if pf, ok := prefixAbbrevs[strings.ToLower(tok[:1])]; ok {
		if name, ok := rootAbbrevs[strings.ToLower(tok[1:])]; ok {
			return pf * roots[name], nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, tok)
}
