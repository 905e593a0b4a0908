package main

import "fleetreport/cmd/admin/cmd"

func main() {
	cmd.Execute()
}
