package http

// Static HTML pages. The pages carry no server-side state; everything
// dynamic arrives over /get-data and the WebSocket.

const loginPage = `<!DOCTYPE html>
<html>
<head>
    <title>Live Market - Login</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px auto; max-width: 400px; }
        input { display: block; width: 100%; margin: 8px 0; padding: 6px; }
        button { padding: 6px 20px; background-color: #007cba; color: white; border: none; cursor: pointer; }
    </style>
</head>
<body>
    <h1>Login</h1>
    <form method="POST" action="/login">
        <input type="text" name="username" placeholder="Username" required>
        <input type="password" name="password" placeholder="Password" required>
        <button type="submit">Login</button>
    </form>
    <p><a href="/register">Create an account</a></p>
</body>
</html>`

const registerPage = `<!DOCTYPE html>
<html>
<head>
    <title>Live Market - Register</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px auto; max-width: 400px; }
        input { display: block; width: 100%; margin: 8px 0; padding: 6px; }
        button { padding: 6px 20px; background-color: #007cba; color: white; border: none; cursor: pointer; }
    </style>
</head>
<body>
    <h1>Register</h1>
    <form method="POST" action="/register">
        <input type="text" name="username" placeholder="Username" required>
        <input type="password" name="password" placeholder="Password" required>
        <input type="email" name="email" placeholder="Email" required>
        <button type="submit">Register</button>
    </form>
    <p><a href="/login">Already have an account?</a></p>
</body>
</html>`

const loginErrorPage = `<!DOCTYPE html>
<html>
<head><title>Live Market - Login failed</title></head>
<body style="font-family: Arial, sans-serif; margin: 40px auto; max-width: 400px;">
    <h1>Login failed</h1>
    <p>Wrong username or password.</p>
    <p><a href="/login">Try again</a></p>
</body>
</html>`

const registerErrorPage = `<!DOCTYPE html>
<html>
<head><title>Live Market - Registration failed</title></head>
<body style="font-family: Arial, sans-serif; margin: 40px auto; max-width: 400px;">
    <h1>Registration failed</h1>
    <p>That username is already taken or the form was incomplete.</p>
    <p><a href="/register">Try again</a></p>
</body>
</html>`

const datosPage = `<!DOCTYPE html>
<html>
<head>
    <title>Live Market</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        section { margin-bottom: 30px; }
        table { border-collapse: collapse; }
        td, th { border: 1px solid #ccc; padding: 4px 10px; }
        #chat {
            border: 1px solid #ccc;
            height: 200px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        input[type="text"] { width: 250px; padding: 5px; margin-right: 10px; }
        button { padding: 5px 15px; background-color: #007cba; color: white; border: none; cursor: pointer; }
    </style>
</head>
<body>
    <h1>Live Market</h1>
    <p id="greeting"></p>
    <p><a href="/logout">Logout</a></p>

    <section>
        <h2>Products</h2>
        <table id="products">
            <thead><tr><th>Name</th><th>Price</th></tr></thead>
            <tbody></tbody>
        </table>
        <input type="text" id="productName" placeholder="Name">
        <input type="text" id="productPrice" placeholder="Price">
        <button onclick="sendProduct()">Add product</button>
    </section>

    <section>
        <h2>Chat</h2>
        <div id="chat"></div>
        <input type="text" id="chatText" placeholder="Type a message...">
        <button onclick="sendChat()">Send</button>
    </section>

    <script>
        fetch('/get-data')
            .then(function(res) { return res.json(); })
            .then(function(data) {
                document.getElementById('greeting').textContent =
                    'Hello ' + data.user.username + ', visit number ' + data.contador;
            });

        var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
        var ws = new WebSocket(proto + location.host + '/ws');

        ws.onmessage = function(evt) {
            var msg = JSON.parse(evt.data);
            if (msg.event === 'products') {
                renderProducts(msg.data);
            } else if (msg.event === 'messages') {
                renderMessages(msg.data);
            }
        };

        function renderProducts(products) {
            var body = document.querySelector('#products tbody');
            body.innerHTML = '';
            products.forEach(function(p) {
                var row = document.createElement('tr');
                row.innerHTML = '<td>' + (p.name || '') + '</td><td>' + (p.price || '') + '</td>';
                body.appendChild(row);
            });
        }

        function renderMessages(messages) {
            var chat = document.getElementById('chat');
            chat.innerHTML = '';
            messages.forEach(function(m) {
                var line = document.createElement('div');
                line.textContent = (m.user ? m.user + ': ' : '') + (m.text || '');
                chat.appendChild(line);
            });
            chat.scrollTop = chat.scrollHeight;
        }

        function sendProduct() {
            var name = document.getElementById('productName').value.trim();
            var price = document.getElementById('productPrice').value.trim();
            if (!name) { return; }
            ws.send(JSON.stringify({event: 'update-products', data: {name: name, price: price}}));
            document.getElementById('productName').value = '';
            document.getElementById('productPrice').value = '';
        }

        function sendChat() {
            var text = document.getElementById('chatText').value.trim();
            if (!text) { return; }
            ws.send(JSON.stringify({event: 'update-chat', data: {text: text}}));
            document.getElementById('chatText').value = '';
        }

        document.getElementById('chatText').addEventListener('keypress', function(e) {
            if (e.key === 'Enter') { sendChat(); }
        });
    </script>
</body>
</html>`
