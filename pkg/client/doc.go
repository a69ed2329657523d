/*
Package client talks to a livestatus server over TCP or a unix socket.

Every request is sent with fixed16 response framing so the client knows
where a response ends without relying on the server closing the
connection:

	c := client.NewClient("127.0.0.1:50000")
	resp, err := c.Query(ctx, "GET hosts\nColumns: name state")
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("query failed: %d %s", resp.Status, resp.Body)
	}

# Keep-alive

Dial returns a Conn that marks each request with KeepAlive so several
requests share one connection:

	conn, err := c.Dial(ctx)
	defer conn.Close()
	hosts, _ := conn.Query("GET hosts\nColumns: name")
	svcs, _ := conn.Query("GET services\nColumns: host_name description")

Addresses beginning with "/" or "unix:" select a unix socket.
*/
package client
