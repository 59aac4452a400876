// Package guide выдает справочники о правах по коду юрисдикции.
package guide

import "github.com/magabrotheeeer/knowyourrights/internal/models"

var builtin = map[string]models.Guide{
	"CA": {
		ID:           "1",
		Jurisdiction: "CA",
		Title:        "California - Know Your Rights",
		Language:     models.LanguageEnglish,
		Content: models.GuideContent{
			Overview: "In California, you have specific rights during police interactions.",
			WhatToDo: []string{
				"Remain calm and polite",
				"Keep your hands visible",
				`Ask "Am I free to leave?"`,
				"Request a lawyer if arrested",
				"Do not consent to searches",
			},
			WhatNotToSay: []string{
				"Do not admit guilt",
				"Do not lie to officers",
				"Do not argue or resist",
				"Do not provide information beyond required ID",
			},
			SpecificRights: []string{
				"Right to remain silent (Miranda Rights)",
				"Right to refuse consent to search vehicle/person",
				"Right to ask if you are being detained",
				"Right to record police interactions in public",
			},
		},
	},
	"NY": {
		ID:           "2",
		Jurisdiction: "NY",
		Title:        "New York - Know Your Rights",
		Language:     models.LanguageEnglish,
		Content: models.GuideContent{
			Overview: "In New York, you have constitutional rights during police encounters.",
			WhatToDo: []string{
				"Stay calm and respectful",
				"Keep hands where officers can see them",
				"Ask if you are free to leave",
				"Invoke your right to remain silent",
				"Request an attorney",
			},
			WhatNotToSay: []string{
				"Never admit to any wrongdoing",
				"Do not lie or provide false information",
				"Avoid arguing with officers",
				"Do not volunteer information",
			},
			SpecificRights: []string{
				"Right to remain silent under 5th Amendment",
				"Right to refuse searches without warrant",
				"Right to know reason for detention",
				"Right to legal representation",
			},
		},
	},
}

// Lookup возвращает встроенный справочник. Для кодов без справочника
// возвращается справочник юрисдикции по умолчанию.
func Lookup(code string) models.Guide {
	g, ok := builtin[code]
	if !ok {
		g = builtin[models.DefaultJurisdiction]
	}
	return clone(g)
}

func clone(g models.Guide) models.Guide {
	g.Content.WhatToDo = append([]string(nil), g.Content.WhatToDo...)
	g.Content.WhatNotToSay = append([]string(nil), g.Content.WhatNotToSay...)
	g.Content.SpecificRights = append([]string(nil), g.Content.SpecificRights...)
	return g
}
