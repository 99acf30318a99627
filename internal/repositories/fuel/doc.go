// Package fuel persists fuel records. Liters, price and the derived money
// columns are TEXT holding decimal strings so no float rounding ever reaches
// disk. The fuel number and its running sequence are unique.
package fuel
