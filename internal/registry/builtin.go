package registry

// Buffer distances follow international consumer-fireworks safety standards
// (NFPA 1123, Czech Act 344/2025, Missouri RSMo 320.151, UK CAA CAP 736,
// CFPA-E Guideline 30:2013), adapted to city-scale analysis:
// critical hazards 50-1500m, health and safety facilities 50-100m,
// cultural sites 30-50m, natural and recreation areas 20-50m,
// infrastructure and commercial 20-50m.

func tag(key string, values ...string) TagMatcher {
	return TagMatcher{Key: key, Values: values}
}

func anyTag(key string) TagMatcher {
	return TagMatcher{Key: key, Any: true}
}

// Builtin returns the default ordered category registry. Order is
// significant: classification assigns each feature to the first matching
// category.
func Builtin() *Registry {
	return &Registry{Categories: []Category{
		// Critical hazards.
		{
			Name: "fuel_stations", BufferM: 100,
			Matchers:    []TagMatcher{tag("amenity", "fuel")},
			Description: "Gas stations and fuel depots",
		},
		{
			Name: "power_plants", BufferM: 100,
			Matchers:    []TagMatcher{tag("power", "plant", "generator")},
			Description: "Power generation facilities",
		},
		{
			Name: "substations", BufferM: 50,
			Matchers:    []TagMatcher{tag("power", "substation"), tag("man_made", "substation")},
			Description: "Electrical substations and transformers",
		},
		{
			Name: "power_lines", BufferM: 30,
			Matchers:    []TagMatcher{tag("power", "line", "minor_line")},
			Description: "Overhead electrical power lines",
		},
		{
			Name: "airports", BufferM: 1500,
			Matchers:    []TagMatcher{tag("aeroway", "aerodrome", "runway", "taxiway")},
			Description: "Airports and airport infrastructure",
		},
		{
			Name: "helipads", BufferM: 500,
			Matchers:    []TagMatcher{tag("aeroway", "helipad")},
			Description: "Helicopter landing pads",
		},
		{
			Name: "military", BufferM: 100,
			Matchers:    []TagMatcher{tag("landuse", "military")},
			Description: "Military bases and installations",
		},

		// Health and safety.
		{
			Name: "hospitals", BufferM: 50,
			Matchers:    []TagMatcher{tag("amenity", "hospital")},
			Description: "Hospitals and medical centers",
		},
		{
			Name: "schools", BufferM: 100,
			Matchers:    []TagMatcher{tag("amenity", "school", "kindergarten", "university", "college")},
			Description: "Educational facilities",
		},
		{
			Name: "nursing_homes", BufferM: 50,
			Matchers:    []TagMatcher{tag("amenity", "nursing_home", "social_facility")},
			Description: "Care facilities for vulnerable populations",
		},

		// Animal facilities.
		{
			Name: "animal_facilities", BufferM: 30,
			Matchers:    []TagMatcher{tag("amenity", "animal_shelter", "animal_boarding", "veterinary")},
			Description: "Animal shelters, boarding facilities, and veterinary clinics",
		},
		{
			Name: "theme_parks", BufferM: 100,
			Matchers:    []TagMatcher{tag("tourism", "zoo", "aquarium", "theme_park")},
			Description: "Zoos, aquariums, and theme parks",
		},

		// Government and security.
		{
			Name: "government", BufferM: 50,
			Matchers: []TagMatcher{
				tag("amenity", "townhall", "embassy"),
				tag("office", "government", "diplomatic"),
				tag("landuse", "institutional"),
			},
			Description: "Government buildings, embassies, and institutional complexes",
		},
		{
			Name: "security", BufferM: 50,
			Matchers:    []TagMatcher{tag("amenity", "police", "fire_station", "prison")},
			Description: "Police stations, fire stations, and correctional facilities",
		},

		// Cultural and historic.
		{
			Name: "memorials", BufferM: 50,
			Matchers:    []TagMatcher{tag("historic", "memorial")},
			Description: "Memorial sites",
		},
		{
			Name: "monuments", BufferM: 50,
			Matchers:    []TagMatcher{tag("historic", "monument")},
			Description: "Historic monuments and landmarks",
		},
		{
			Name: "historic_sites", BufferM: 50,
			Matchers:    []TagMatcher{tag("historic", "archaeological_site", "castle", "fort", "heritage", "ruins")},
			Description: "Archaeological sites, castles, forts, and heritage sites",
		},
		{
			Name: "museums", BufferM: 30,
			Matchers:    []TagMatcher{tag("tourism", "museum", "gallery")},
			Description: "Museums and art galleries",
		},
		{
			Name: "tourism_attractions", BufferM: 30,
			Matchers:    []TagMatcher{tag("tourism", "attraction", "artwork", "viewpoint")},
			Description: "Tourist attractions, public artwork, and viewpoints",
		},
		{
			Name: "religious", BufferM: 50,
			Matchers:    []TagMatcher{tag("landuse", "religious")},
			Description: "Churches, monasteries, and religious sites",
		},
		{
			Name: "cemeteries", BufferM: 50,
			Matchers:    []TagMatcher{tag("landuse", "cemetery"), tag("amenity", "grave_yard")},
			Description: "Cemeteries and burial grounds",
		},

		// Natural and recreation.
		{
			Name: "parks", BufferM: 30,
			Matchers: []TagMatcher{
				tag("leisure", "park", "garden", "playground", "pitch", "stadium",
					"sports_centre", "nature_reserve", "track"),
			},
			Description: "Parks, gardens, playgrounds, and sports facilities",
		},
		{
			Name: "forests", BufferM: 30,
			Matchers: []TagMatcher{
				tag("landuse", "forest"),
				tag("natural", "wood", "scrub", "tree_row", "shrubbery"),
			},
			Description: "Forests, woods, and tree-covered areas",
		},
		{
			Name: "agriculture", BufferM: 30,
			Matchers:    []TagMatcher{tag("landuse", "farmland", "orchard", "vineyard", "meadow", "greenfield")},
			Description: "Agricultural land, orchards, vineyards, and meadows",
		},
		{
			Name: "protected_areas", BufferM: 50,
			Matchers:    []TagMatcher{tag("boundary", "protected_area")},
			Description: "Nature reserves and protected environmental areas",
		},
		{
			Name: "water_bodies", BufferM: 20,
			Matchers:    []TagMatcher{tag("natural", "water")},
			Description: "Lakes, ponds, and reservoirs",
		},
		{
			Name: "waterways", BufferM: 20,
			Matchers:    []TagMatcher{anyTag("waterway")},
			Description: "Rivers, streams, and canals",
		},
		{
			Name: "natural_hazards", BufferM: 50,
			Matchers:    []TagMatcher{tag("natural", "cliff", "valley", "wetland")},
			Description: "Cliffs, valleys, wetlands, and hazardous terrain",
		},

		// Infrastructure.
		{
			Name: "railways", BufferM: 50,
			Matchers:    []TagMatcher{anyTag("railway"), tag("landuse", "railway")},
			Description: "Railway infrastructure",
		},
		{
			Name: "driving_facilities", BufferM: 30,
			Matchers:    []TagMatcher{tag("amenity", "driver_training")},
			Description: "Driving schools and autodromes",
		},
		{
			Name: "construction", BufferM: 30,
			Matchers:    []TagMatcher{tag("landuse", "construction", "brownfield")},
			Description: "Active construction sites and brownfield land",
		},
		{
			Name: "industrial_extraction", BufferM: 50,
			Matchers:    []TagMatcher{tag("landuse", "quarry")},
			Description: "Quarries and mineral extraction sites",
		},
		{
			Name: "towers", BufferM: 30,
			Matchers:    []TagMatcher{tag("man_made", "tower", "water_tower")},
			Description: "Communication towers and water towers",
		},
		{
			Name: "reservoirs", BufferM: 30,
			Matchers:    []TagMatcher{tag("man_made", "reservoir_covered")},
			Description: "Covered water reservoirs",
		},

		// Commercial.
		{
			Name: "marketplaces", BufferM: 30,
			Matchers:    []TagMatcher{tag("amenity", "marketplace")},
			Description: "Public markets and high foot-traffic commercial areas",
		},
		{
			Name: "commercial_areas", BufferM: 30,
			Matchers: []TagMatcher{
				tag("landuse", "commercial", "retail"),
				anyTag("shop"),
				tag("amenity", "restaurant", "cafe", "bar", "fast_food"),
			},
			Description: "Commercial zones, shops, restaurants, and cafes",
		},
		{
			Name: "garages", BufferM: 20,
			Matchers:    []TagMatcher{tag("landuse", "garages")},
			Description: "Garage complexes and parking structures",
		},

		// Standard obstacles.
		{
			Name: "buildings", BufferM: 30,
			Matchers:    []TagMatcher{anyTag("building")},
			Description: "All building structures",
		},
		{
			Name: "roads", BufferM: 30,
			Matchers: []TagMatcher{
				tag("highway", "motorway", "trunk", "primary", "secondary", "tertiary",
					"motorway_link", "trunk_link", "primary_link",
					"secondary_link", "tertiary_link"),
			},
			Description: "Major roads and highways",
		},
		{
			Name: "parking", BufferM: 50,
			Matchers:    []TagMatcher{tag("amenity", "parking"), tag("landuse", "parking")},
			Description: "Parking lots and areas",
		},
		{
			Name: "industrial", BufferM: 30,
			Matchers:    []TagMatcher{tag("landuse", "industrial")},
			Description: "Industrial zones and factories",
		},
	}}
}
