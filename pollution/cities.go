package pollution

import "github.com/pollualert/core/models"

// Cities is the built-in monitored catalog: the Moroccan network plus the
// Mediterranean reference cities. Callers extend it with user favorites.
var Cities = []models.Location{
	// Morocco
	{ID: "Casablanca", Name: "Casablanca", Lat: 33.5731, Lon: -7.5898},
	{ID: "Rabat", Name: "Rabat", Lat: 34.0209, Lon: -6.8416},
	{ID: "Marrakech", Name: "Marrakech", Lat: 31.6295, Lon: -7.9811},
	{ID: "Fès", Name: "Fès", Lat: 34.0333, Lon: -5.0000},
	{ID: "Tanger", Name: "Tanger", Lat: 35.7595, Lon: -5.8340},
	{ID: "El Jadida", Name: "El Jadida", Lat: 33.2316, Lon: -8.5007},
	{ID: "Agadir", Name: "Agadir", Lat: 30.4278, Lon: -9.5981},
	{ID: "Oujda", Name: "Oujda", Lat: 34.6814, Lon: -1.9086},
	{ID: "Nador", Name: "Nador", Lat: 35.1681, Lon: -2.9335},
	{ID: "Tetouan", Name: "Tetouan", Lat: 35.5785, Lon: -5.3684},
	{ID: "Kenitra", Name: "Kenitra", Lat: 34.2610, Lon: -6.5802},
	{ID: "Beni Mellal", Name: "Beni Mellal", Lat: 32.3372, Lon: -6.3498},
	{ID: "Safi", Name: "Safi", Lat: 32.3008, Lon: -9.2275},
	{ID: "Essaouira", Name: "Essaouira", Lat: 31.5125, Lon: -9.7749},
	{ID: "Taza", Name: "Taza", Lat: 34.2133, Lon: -3.9986},
	{ID: "Ouarzazate", Name: "Ouarzazate", Lat: 30.9189, Lon: -6.8934},
	{ID: "Tiznit", Name: "Tiznit", Lat: 29.6974, Lon: -9.7316},
	{ID: "Tan-Tan", Name: "Tan-Tan", Lat: 28.4378, Lon: -11.1014},
	{ID: "Guelmim", Name: "Guelmim", Lat: 28.9870, Lon: -10.0574},
	{ID: "Laâyoune", Name: "Laâyoune", Lat: 27.1253, Lon: -13.1625},
	{ID: "Sous-Massa", Name: "Sous-Massa", Lat: 29.4064, Lon: -10.0299},
	{ID: "Guelmim-Oued Noun", Name: "Guelmim-Oued Noun", Lat: 28.4445, Lon: -10.0634},
	{ID: "Errachidia", Name: "Errachidia", Lat: 31.9314, Lon: -4.4246},
	{ID: "Figuig", Name: "Figuig", Lat: 32.1138, Lon: -1.2296},
	{ID: "Zagora", Name: "Zagora", Lat: 30.3322, Lon: -5.8380},
	// Spain
	{ID: "Madrid", Name: "Madrid", Lat: 40.4168, Lon: -3.7038},
	{ID: "Barcelona", Name: "Barcelona", Lat: 41.3851, Lon: 2.1734},
	{ID: "Valencia", Name: "Valencia", Lat: 39.4699, Lon: -0.3763},
	{ID: "Seville", Name: "Seville", Lat: 37.3891, Lon: -5.9845},
	{ID: "Bilbao", Name: "Bilbao", Lat: 43.2627, Lon: -2.9253},
	// France
	{ID: "Paris", Name: "Paris", Lat: 48.8566, Lon: 2.3522},
	{ID: "Marseille", Name: "Marseille", Lat: 43.2965, Lon: 5.3698},
	{ID: "Lyon", Name: "Lyon", Lat: 45.7640, Lon: 4.8357},
	{ID: "Toulouse", Name: "Toulouse", Lat: 43.6047, Lon: 1.4442},
	{ID: "Nice", Name: "Nice", Lat: 43.7102, Lon: 7.2620},
	// Italy
	{ID: "Rome", Name: "Rome", Lat: 41.9028, Lon: 12.4964},
	{ID: "Milan", Name: "Milan", Lat: 45.4642, Lon: 9.1900},
	{ID: "Naples", Name: "Naples", Lat: 40.8518, Lon: 14.2681},
	{ID: "Turin", Name: "Turin", Lat: 45.0703, Lon: 7.6869},
	{ID: "Florence", Name: "Florence", Lat: 43.7696, Lon: 11.2558},
	// Portugal
	{ID: "Lisbon", Name: "Lisbon", Lat: 38.7223, Lon: -9.1393},
	{ID: "Porto", Name: "Porto", Lat: 41.1579, Lon: -8.6291},
	{ID: "Braga", Name: "Braga", Lat: 41.5518, Lon: -8.4229},
	{ID: "Coimbra", Name: "Coimbra", Lat: 40.2033, Lon: -8.4103},
	{ID: "Faro", Name: "Faro", Lat: 37.0194, Lon: -7.9322},
}
