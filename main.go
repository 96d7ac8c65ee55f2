/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/fintrack-app/apiserver/cmd"

func main() {
	cmd.Execute()
}
