package service

import "fmt"

func storyPublishedEmailTemplate(title, storyURL, appName string) (string, string) {
	subject := fmt.Sprintf("Your story \"%s\" is live", title)
	body := fmt.Sprintf(`Your story "%s" has been published.

Read it here: %s

Readers can now like and share it from the stories page.

Best,
The %s Team`, title, storyURL, appName)

	return subject, body
}

func welcomeEmailTemplate(appURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`Your account is ready.

Start writing: %s

Best,
The %s Team`, appURL, appName)

	return subject, body
}
