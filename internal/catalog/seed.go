package catalog

import "github.com/sahilkr01/drcuberstore/internal/model"

func unsplash(photo string) string {
	return "https://images.unsplash.com/photo-" + photo + "?w=400&h=400&fit=crop"
}

func price(v int64) *int64 {
	return &v
}

// SeedProducts returns the built-in catalog written when the store has no products yet
func SeedProducts() []model.Product {
	return []model.Product{
		{
			ID:            "1",
			Name:          "Speed Cube 3x3 Pro",
			Description:   "Professional speed cube with smooth rotation and corner cutting. Perfect for speedcubing competitions.",
			Price:         599,
			OriginalPrice: price(799),
			Category:      model.CategoryCube,
			Image:         unsplash("1591991564021-0662a8573199"),
			Stock:         50,
			Rating:        4.8,
			Reviews:       234,
			Featured:      true,
			Badge:         "Best Seller",
		},
		{
			ID:            "2",
			Name:          "Magnetic Cube 3x3",
			Description:   "Premium magnetic cube with adjustable tension. Ultra-smooth and stable turns.",
			Price:         899,
			OriginalPrice: price(1199),
			Category:      model.CategoryCube,
			Image:         unsplash("1577401239170-897942555fb3"),
			Stock:         35,
			Rating:        4.9,
			Reviews:       189,
			Featured:      true,
			Badge:         "Premium",
		},
		{
			ID:          "3",
			Name:        "Pyraminx Speed Puzzle",
			Description: "Triangle-shaped puzzle for beginners and pros. Great for learning algorithms.",
			Price:       349,
			Category:    model.CategoryPuzzle,
			Image:       unsplash("1611329857570-f02f340e7378"),
			Stock:       75,
			Rating:      4.6,
			Reviews:     156,
			Featured:    true,
		},
		{
			ID:            "4",
			Name:          "Megaminx Dodecahedron",
			Description:   "12-faced puzzle cube. Challenge yourself with this advanced puzzle.",
			Price:         749,
			OriginalPrice: price(899),
			Category:      model.CategoryPuzzle,
			Image:         unsplash("1494537176433-7a3c4ef2046f"),
			Stock:         25,
			Rating:        4.7,
			Reviews:       98,
		},
		{
			ID:          "5",
			Name:        "Cube Timer Pro",
			Description: "Professional speedcubing timer with mat. Essential for competition practice.",
			Price:       499,
			Category:    model.CategoryAccessory,
			Image:       unsplash("1533749047139-189de3cf06d3"),
			Stock:       40,
			Rating:      4.5,
			Reviews:     67,
		},
		{
			ID:          "6",
			Name:        "Fidget Cube Deluxe",
			Description: "Six-sided fidget toy with different textures. Great stress reliever.",
			Price:       199,
			Category:    model.CategoryToy,
			Image:       unsplash("1558618666-fcd25c85cd64"),
			Stock:       100,
			Rating:      4.4,
			Reviews:     312,
			Featured:    true,
			Badge:       "Popular",
		},
		{
			ID:          "7",
			Name:        "2x2 Mini Cube",
			Description: "Pocket-sized speed cube. Perfect for beginners and on-the-go solving.",
			Price:       249,
			Category:    model.CategoryCube,
			Image:       unsplash("1591991564021-0662a8573199"),
			Stock:       80,
			Rating:      4.6,
			Reviews:     145,
		},
		{
			ID:            "8",
			Name:          "4x4 Master Cube",
			Description:   "Take your skills to the next level with this 4x4 speed cube.",
			Price:         699,
			OriginalPrice: price(849),
			Category:      model.CategoryCube,
			Image:         unsplash("1577401239170-897942555fb3"),
			Stock:         45,
			Rating:        4.7,
			Reviews:       112,
			Featured:      true,
		},
		{
			ID:          "9",
			Name:        "Cube Lubricant Set",
			Description: "Professional lubricant kit for smooth cube performance.",
			Price:       299,
			Category:    model.CategoryAccessory,
			Image:       unsplash("1587440871875-191322ee64b0"),
			Stock:       60,
			Rating:      4.8,
			Reviews:     89,
		},
		{
			ID:          "10",
			Name:        "Brain Teaser Set",
			Description: "Collection of 6 metal puzzles. Great for developing problem-solving skills.",
			Price:       449,
			Category:    model.CategoryPuzzle,
			Image:       unsplash("1606092195730-5d7b9af1efc5"),
			Stock:       30,
			Rating:      4.5,
			Reviews:     76,
		},
		{
			ID:          "11",
			Name:        "Infinity Cube",
			Description: "Endless folding fidget cube. Addictive and satisfying to play with.",
			Price:       179,
			Category:    model.CategoryToy,
			Image:       unsplash("1558618666-fcd25c85cd64"),
			Stock:       120,
			Rating:      4.3,
			Reviews:     234,
			Featured:    true,
			Badge:       "New",
		},
		{
			ID:          "12",
			Name:        "Cube Storage Bag",
			Description: "Premium carrying case for up to 8 cubes. Padded protection.",
			Price:       349,
			Category:    model.CategoryAccessory,
			Image:       unsplash("1553062407-98eeb64c6a62"),
			Stock:       55,
			Rating:      4.6,
			Reviews:     45,
		},
	}
}
