package query

func fixtureRecords() []Record {
	return []Record{
		{ID: 1, Slug: "hollow-knight", Title: "Hollow Knight", Subtitle: "A haunting metroidvania", Body: "Bugs and **bosses**.", PublishedAt: "2023-05-06T10:00:00.000Z", URL: "hollow-knight.jpg"},
		{ID: 2, Slug: "stardew-valley", Title: "Stardew Valley", Subtitle: "Farming, fishing and friendship", Body: "Crops.", PublishedAt: "2023-05-08T09:30:00.000Z", URL: "stardew-valley.jpg"},
		{ID: 3, Slug: "celeste", Title: "Celeste", Subtitle: "Climb the mountain", Body: "Strawberries.", PublishedAt: "2023-04-20T12:00:00.000Z", URL: "celeste.jpg"},
		{ID: 4, Slug: "hades", Title: "Hades", Subtitle: "Escape the underworld", Body: "Boons.", PublishedAt: "2023-05-01T08:00:00.000Z", URL: "hades.jpg"},
		{ID: 5, Slug: "fez", Title: "Fez", Subtitle: "A world of perspective", Body: "Cubes.", PublishedAt: "2023-03-15T16:45:00.000Z", URL: "fez.jpg"},
	}
}

func slugsOf(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Slug
	}
	return out
}
