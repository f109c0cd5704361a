/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/GharOffice/docu-flow-realty-hub/cmd"

func main() {
	cmd.Execute()
}
