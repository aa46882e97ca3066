package integration_test

const (
	// Seeded by testdata/seed_up.sql
	TestUserId         = 1
	TestOtherUserId    = 2
	TestInactiveUserId = 3

	TestShowtimeId      = 1
	TestOtherShowtimeId = 2
	TestMovieTitle      = "Test Movie"
	TestShowroomName    = "Hall 1"

	TestPromoCode        = "FALL25"
	TestExpiredPromoCode = "SUMMER"
)
