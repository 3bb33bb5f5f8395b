// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package templates

import (
	_ "embed"
	"fmt"
	"hash/fnv"
	"strings"

	"gopkg.in/yaml.v3"

	"storypress/internal/models"
)

//go:embed rules.yaml
var rulesYAML []byte

// assignRule maps a keyword vocabulary to a template. Rules are evaluated
// in file order; the first rule with any keyword present in the tag set wins.
type assignRule struct {
	Template models.TemplateKey `yaml:"template"`
	Keywords []string           `yaml:"keywords"`
}

type ruleFile struct {
	Rules []assignRule `yaml:"rules"`
}

var rules []assignRule

func init() {
	var f ruleFile
	if err := yaml.Unmarshal(rulesYAML, &f); err != nil {
		panic(fmt.Sprintf("templates: bad rules.yaml: %v", err))
	}
	for _, r := range f.Rules {
		if !Valid(r.Template) {
			panic(fmt.Sprintf("templates: rules.yaml references unknown template %q", r.Template))
		}
	}
	rules = f.Rules
}

// fallbackPool is the set of templates eligible for hash-based assignment
// when no explicit choice is stored and no keyword rule matches. Order
// matters: the hash is reduced modulo this slice's length.
var fallbackPool = []models.TemplateKey{
	models.TemplateClassic,
	models.TemplateMinimal,
	models.TemplateMono,
	models.TemplateVivid,
}

// Assign resolves the template for a story. Priority: a valid explicit key
// wins; otherwise the first keyword rule matching the case-folded tag set;
// otherwise a stable FNV-1a hash of identifier picks from the fallback pool.
//
// The function is pure: no I/O, no randomness. Identical inputs always
// produce the same key, across calls and across process restarts, because
// the client computes it before a document is persisted and the compiler
// re-derives it when the stored key is absent.
func Assign(identifier string, tags []string, explicit models.TemplateKey) models.TemplateKey {
	if explicit != "" && Valid(explicit) {
		return explicit
	}

	folded := make(map[string]bool, len(tags))
	for _, t := range tags {
		folded[strings.ToLower(strings.TrimSpace(t))] = true
	}

	for _, r := range rules {
		for _, kw := range r.Keywords {
			if folded[kw] {
				return r.Template
			}
		}
	}

	h := fnv.New32a()
	h.Write([]byte(identifier))
	return fallbackPool[int(h.Sum32()%uint32(len(fallbackPool)))]
}
