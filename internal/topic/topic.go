package topic

import (
	"errors"
	"fmt"
	"strings"
)

// Key identifies one news tab.
type Key string

const (
	Tech   Key = "TECH"
	Nvidia Key = "NVIDIA"
	Custom Key = "CUSTOM"
)

// ErrUnknown is returned for keys outside the fixed enumeration.
var ErrUnknown = errors.New("unknown topic")

// All returns every topic in tab order. The first one is the default tab.
func All() []Key {
	return []Key{Tech, Nvidia, Custom}
}

var labels = map[Key]string{
	Tech:   "Tech",
	Nvidia: "NVIDIA",
	Custom: "Custom",
}

var domains = map[Key][]string{
	Tech: {
		"AI Developer Tools",
		"Generative AI Frameworks",
		"Machine Learning Research",
		"Large Language Models",
		"Open Source AI Projects",
		"AI Model Optimization",
		"Computer Vision",
		"Natural Language Processing",
	},
	Nvidia: {
		"NVIDIA CUDA & SDKs",
		"NVIDIA GPU Technology",
		"NVIDIA AI Enterprise",
		"NVIDIA Omniverse",
		"Deep Learning Super Sampling (DLSS)",
	},
}

// Valid reports whether k is part of the enumeration.
func (k Key) Valid() bool {
	_, ok := labels[k]
	return ok
}

func (k Key) Label() string {
	if l, ok := labels[k]; ok {
		return l
	}
	return string(k)
}

// Domains returns the focus domains quoted in prompts. Custom has none.
func (k Key) Domains() []string {
	d := domains[k]
	out := make([]string, len(d))
	copy(out, d)
	return out
}

// IsCustom reports whether k is driven by free-text queries.
func (k Key) IsCustom() bool {
	return k == Custom
}

// Index returns the tab position of k, or -1.
func (k Key) Index() int {
	for i, t := range All() {
		if t == k {
			return i
		}
	}
	return -1
}

// Parse maps a CLI or config value to a Key, case-insensitively.
func Parse(s string) (Key, error) {
	s = strings.TrimSpace(s)
	for _, k := range All() {
		if strings.EqualFold(string(k), s) || strings.EqualFold(labels[k], s) {
			return k, nil
		}
	}
	valid := make([]string, 0, len(labels))
	for _, k := range All() {
		valid = append(valid, strings.ToLower(string(k)))
	}
	return "", fmt.Errorf("%w %q (valid: %s)", ErrUnknown, s, strings.Join(valid, ", "))
}
