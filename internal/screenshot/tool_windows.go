// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows

package screenshot

// tool is an installed screenshot program and how to drive it.
type tool struct {
	name string
	cmd  func(mode Mode, outPath string) (string, []string)
}

// findTool drives a PowerShell one-liner over System.Windows.Forms.
// Only full-screen capture is supported on Windows.
func findTool() (*tool, error) {
	return &tool{name: "powershell", cmd: powershellCmd}, nil
}

func powershellCmd(_ Mode, out string) (string, []string) {
	script := `Add-Type -AssemblyName System.Windows.Forms,System.Drawing; ` +
		`$b = [System.Windows.Forms.SystemInformation]::VirtualScreen; ` +
		`$bmp = New-Object System.Drawing.Bitmap $b.Width, $b.Height; ` +
		`$g = [System.Drawing.Graphics]::FromImage($bmp); ` +
		`$g.CopyFromScreen($b.X, $b.Y, 0, 0, $bmp.Size); ` +
		`$bmp.Save('` + out + `', [System.Drawing.Imaging.ImageFormat]::Png)`
	return "powershell", []string{"-NoProfile", "-Command", script}
}
