// Command rive2d extracts Live2D LPK packages and manages the local model
// library.
//
// The root command loads configuration once (see internal/config) and the
// subcommands share it through commandContext:
//
//	rive2d extract <package.lpk> <out-dir>   unpack a package, print the descriptor path
//	rive2d import <package.lpk|model.json>   unpack into library_dir and record the model
//	rive2d models list|remove|use            inspect and curate the library
//	rive2d settings show|get|set|reset       viewer settings stored with the library
//	rive2d config init|validate              configuration utilities
package main
