package foods

var indianFoods = []ReferenceFood{
	{
		Name:     "Basmati Rice (cooked)",
		Category: "grain",
		Region:   "north",
		NutritionalInfo: NutritionalInfo{
			CaloriesPer100g: 121,
			ProteinPer100g:  2.6,
			CarbsPer100g:    25,
			FatPer100g:      0.4,
			FiberPer100g:    0.4,
		},
	},
	{
		Name:     "Dal (Toor/Arhar)",
		Category: "dal",
		Region:   "all",
		NutritionalInfo: NutritionalInfo{
			CaloriesPer100g: 343,
			ProteinPer100g:  22.3,
			CarbsPer100g:    59.8,
			FatPer100g:      1.5,
			FiberPer100g:    9.5,
		},
	},
	{
		Name:     "Paneer",
		Category: "dairy",
		Region:   "north",
		NutritionalInfo: NutritionalInfo{
			CaloriesPer100g: 265,
			ProteinPer100g:  18.3,
			CarbsPer100g:    1.2,
			FatPer100g:      20.8,
			FiberPer100g:    0,
		},
	},
	{
		Name:     "Chicken Curry",
		Category: "meat",
		Region:   "all",
		NutritionalInfo: NutritionalInfo{
			CaloriesPer100g: 180,
			ProteinPer100g:  25.0,
			CarbsPer100g:    3.0,
			FatPer100g:      7.5,
			FiberPer100g:    0.5,
		},
	},
	{
		Name:     "Roti/Chapati",
		Category: "grain",
		Region:   "north",
		NutritionalInfo: NutritionalInfo{
			CaloriesPer100g: 297,
			ProteinPer100g:  11.0,
			CarbsPer100g:    58.6,
			FatPer100g:      4.4,
			FiberPer100g:    11.5,
		},
	},
	{
		Name:     "Idli",
		Category: "breakfast",
		Region:   "south",
		NutritionalInfo: NutritionalInfo{
			CaloriesPer100g: 146,
			ProteinPer100g:  4.2,
			CarbsPer100g:    28.8,
			FatPer100g:      1.0,
			FiberPer100g:    1.0,
		},
	},
	{
		Name:     "Samosa",
		Category: "snack",
		Region:   "north",
		NutritionalInfo: NutritionalInfo{
			CaloriesPer100g: 308,
			ProteinPer100g:  5.4,
			CarbsPer100g:    30.0,
			FatPer100g:      19.0,
			FiberPer100g:    3.0,
		},
	},
	{
		Name:     "Curd/Yogurt",
		Category: "dairy",
		Region:   "all",
		NutritionalInfo: NutritionalInfo{
			CaloriesPer100g: 60,
			ProteinPer100g:  3.5,
			CarbsPer100g:    4.7,
			FatPer100g:      3.3,
			FiberPer100g:    0,
		},
	},
}
