package middlewares

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/gin-gonic/gin"
)

var (
	// cognitoClient is a thread safe client that performs user authorization
	// based on jwt token. Before using this client, make sure it's initialized
	// correctly.
	cognitoClient *cognitoidentityprovider.Client
)

// Setup initialized all package scoped variables that are needed to perform
// middleware functionalities, such as Cognito client. This function must be
// called before any middleware is used.
func Setup() {
	client, err := createCognitoClient()
	if err != nil {
		// Abort directly if the Cognito isn't setup successfully, which is
		// crucial for server side authorization.
		log.Fatalf("fail to setup Cognito client: %s", err.Error())
	}
	setCognitoClient(client)
}

// createCognitoClient creates a default client with aws config located in path
// ~/.aws/config, and return error on error.
func createCognitoClient() (*cognitoidentityprovider.Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		return nil, err
	}
	return cognitoidentityprovider.NewFromConfig(cfg), nil
}

func setCognitoClient(client *cognitoidentityprovider.Client) {
	cognitoClient = client
}

// JWT middleware fetches the caller's jwt token, looking first for a bearer
// Authorization header and falling back to the "token" query field. It then
// validates the token against the identity provider and adds a header "sub"
// carrying the user's id, which is the only identity surface the handlers
// ever read. It returns error on token not provided or token is invalid
// (wrong token or expired).
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		jwt := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if jwt == "" {
			jwt = c.Query("token")
		}

		if jwt == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "empty jwt token",
			})
			c.Abort()
			return
		}

		user, err := cognitoClient.GetUser(context.TODO(), &cognitoidentityprovider.GetUserInput{AccessToken: &jwt})

		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
			})
			c.Abort()
			return
		}

		// Successfully validated the jwt token. The sub header is stripped
		// first so a client can never smuggle in an identity of its choosing.
		c.Request.Header.Del("sub")
		c.Request.Header.Add("sub", *user.Username)

		// before request
		c.Next()
	}
}
