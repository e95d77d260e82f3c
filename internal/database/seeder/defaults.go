package seeder

import "strings"

// Defaults returns the reference-data seeders. An admin account is seeded
// only when adminEmail is set.
func Defaults(adminEmail string) []Seeder {
	out := []Seeder{IndustriesSeeder{}}
	if email := strings.TrimSpace(adminEmail); email != "" {
		out = append(out, AdminSeeder{Email: email})
	}
	return out
}
