package repository

import (
	"context"
	"time"

	"github.com/frontdesk/service-reservation/internal/domain/room"
	"github.com/google/uuid"
)

// RoomSeeder stores bootstrap rooms.
type RoomSeeder interface {
	SeedRoom(ctx context.Context, rm *room.Room) error
}

var demoRoomTypes = []room.Type{
	{ID: uuid.MustParse("9b2f6f0e-0c51-4f0e-9a57-2c1f6c0b0001"), Name: "Standard", Description: "Queen bed, city view", BaseNightlyRateCents: 8900},
	{ID: uuid.MustParse("9b2f6f0e-0c51-4f0e-9a57-2c1f6c0b0002"), Name: "Deluxe", Description: "King bed, balcony", BaseNightlyRateCents: 12900},
	{ID: uuid.MustParse("9b2f6f0e-0c51-4f0e-9a57-2c1f6c0b0003"), Name: "Suite", Description: "Separate living area", BaseNightlyRateCents: 21900},
}

// DemoRooms returns the rooms inserted by the seed migration.
func DemoRooms() []*room.Room {
	now := time.Now().UTC()
	rooms := []struct {
		id, number string
		roomType   room.Type
	}{
		{"3c1e7a52-6a2d-4b7e-8d0a-5e4f3b2a0101", "101", demoRoomTypes[0]},
		{"3c1e7a52-6a2d-4b7e-8d0a-5e4f3b2a0102", "102", demoRoomTypes[0]},
		{"3c1e7a52-6a2d-4b7e-8d0a-5e4f3b2a0201", "201", demoRoomTypes[1]},
		{"3c1e7a52-6a2d-4b7e-8d0a-5e4f3b2a0202", "202", demoRoomTypes[1]},
		{"3c1e7a52-6a2d-4b7e-8d0a-5e4f3b2a0301", "301", demoRoomTypes[2]},
	}

	out := make([]*room.Room, len(rooms))
	for i, r := range rooms {
		out[i] = room.Reconstruct(uuid.MustParse(r.id), r.number, room.StatusAvailable, r.roomType, now)
	}
	return out
}

// SeedDemoRooms stores DemoRooms through seeder.
func SeedDemoRooms(ctx context.Context, seeder RoomSeeder) error {
	for _, rm := range DemoRooms() {
		if err := seeder.SeedRoom(ctx, rm); err != nil {
			return err
		}
	}
	return nil
}
