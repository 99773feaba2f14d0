package session

import "github.com/xbooster/backend/internal/model"

// SampleTasks seeds the explore feed when no real candidates are
// available.
var SampleTasks = []model.Task{
	{
		ID:           "real1",
		Name:         "gLGbcf6vKA85ZPg",
		Handle:       "gLGbcf6vKA85ZPg",
		AvatarURL:    "https://picsum.photos/100/100?random=1",
		IsOnline:     true,
		Price:        10,
		IsFollowBack: true,
	},
	{
		ID:           "real2",
		Name:         "Kristal6861",
		Handle:       "Kristal6861",
		AvatarURL:    "https://picsum.photos/100/100?random=2",
		IsOnline:     true,
		Price:        10,
		IsFollowBack: true,
	},
	{
		ID:        "real3",
		Name:      "FennecBTC",
		Handle:    "FennecBTC",
		AvatarURL: "https://picsum.photos/100/100?random=3",
		IsOnline:  true,
		Price:     10,
	},
	{
		ID:        "real4",
		Name:      "Alex Megas",
		Handle:    "alexmegas1992",
		AvatarURL: "https://picsum.photos/100/100?random=4",
		Price:     10,
	},
	{
		ID:        "real5",
		Name:      "Ilgar",
		Handle:    "Ilgar43876456",
		AvatarURL: "https://picsum.photos/100/100?random=5",
		Price:     10,
	},
	{
		ID:        "real6",
		Name:      "iTor",
		Handle:    "_iTor_",
		AvatarURL: "https://picsum.photos/100/100?random=6",
		IsOnline:  true,
		Price:     10,
	},
	{
		ID:        "real7",
		Name:      "Polymira",
		Handle:    "Polymira",
		AvatarURL: "https://picsum.photos/100/100?random=7",
		Price:     10,
	},
	{
		ID:        "real8",
		Name:      "Kolyan Trend",
		Handle:    "kolyan_trend",
		AvatarURL: "https://picsum.photos/100/100?random=8",
		IsOnline:  true,
		Price:     10,
	},
}

// SampleTaskByID resolves a sample id so follows on seeded tasks still
// verify and reward.
func SampleTaskByID(id string) (model.Task, bool) {
	for _, task := range SampleTasks {
		if task.ID == id {
			return task, true
		}
	}

	return model.Task{}, false
}
