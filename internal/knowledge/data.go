package knowledge

var defaultRegions = []RegionalFacts{
	{
		Region:      "northeast",
		CommonWeeds: []string{"crabgrass", "dandelion", "clover"},
		SoilType:    "acidic loam",
		ClimateZone: "humid continental",
	},
	{
		Region:      "southeast",
		CommonWeeds: []string{"nutsedge", "dollarweed", "chickweed"},
		SoilType:    "sandy clay",
		ClimateZone: "humid subtropical",
	},
	{
		Region:      "midwest",
		CommonWeeds: []string{"creeping charlie", "plantain", "crabgrass"},
		SoilType:    "silt loam",
		ClimateZone: "humid continental",
	},
	{
		Region:      "southwest",
		CommonWeeds: []string{"spurge", "puncturevine", "bermuda grass"},
		SoilType:    "alkaline sand",
		ClimateZone: "arid",
	},
	{
		Region:      "pacific_northwest",
		CommonWeeds: []string{"moss", "english daisy", "hairy bittercress"},
		SoilType:    "volcanic loam",
		ClimateZone: "oceanic",
	},
	{
		Region:      "mountain",
		CommonWeeds: []string{"bindweed", "thistle", "cheatgrass"},
		SoilType:    "rocky loam",
		ClimateZone: "semi-arid highland",
	},
}

var defaultSeasons = map[string][]string{
	"spring": {"aeration", "fertilization", "pre_emergent", "mowing", "edging"},
	"summer": {"mowing", "irrigation", "pest_control", "trimming"},
	"fall":   {"leaf_removal", "overseeding", "aeration", "fertilization"},
	"winter": {"snow_removal", "pruning", "equipment_maintenance"},
}

var defaultSkills = []SkillFacts{
	{Skill: "Mowing", Difficulty: 0.2, CertificationRequired: false},
	{Skill: "Edging", Difficulty: 0.3, CertificationRequired: false},
	{Skill: "Trimming", Difficulty: 0.35, CertificationRequired: false},
	{Skill: "Leaf Removal", Difficulty: 0.2, CertificationRequired: false},
	{Skill: "Aeration", Difficulty: 0.45, CertificationRequired: false},
	{Skill: "Fertilization", Difficulty: 0.55, CertificationRequired: true},
	{Skill: "Pest Control", Difficulty: 0.7, CertificationRequired: true},
	{Skill: "Irrigation", Difficulty: 0.65, CertificationRequired: true},
	{Skill: "Landscaping", Difficulty: 0.6, CertificationRequired: false},
	{Skill: "Tree Care", Difficulty: 0.8, CertificationRequired: true},
	{Skill: "Snow Removal", Difficulty: 0.4, CertificationRequired: false},
}
