// Package config manages the puzzle presets of the Game of Fifteen server.
//
// Presets are JSON files in a config directory, one per file. The file name
// without its extension is the config ID used when creating sessions:
//
//	{
//	  "name": "Nearly Solved",
//	  "description": "One slide from the goal",
//	  "width": 4,
//	  "initializer": "fixed",
//	  "permutation": [1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, null, 15]
//	}
//
// A "shuffle" preset omits the permutation and may set "seed" and
// "solvable_only". Every preset is validated by engine.ValidateGameConfig
// before it is cached.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	preset, err := manager.LoadConfig("classic")
//	presets, err := manager.ListConfigs()
//	fallback := manager.GetDefault()
//
// The default is "classic" when present, otherwise the first valid preset in
// the directory, otherwise engine.DefaultConfig.
package config
